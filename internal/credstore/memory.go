package credstore

import (
	"bytes"
	"sync"
)

// MemorySecrets is a SecretStore backed by a map.
type MemorySecrets struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemorySecrets creates a new in-memory secret store.
func NewMemorySecrets() *MemorySecrets {
	return &MemorySecrets{entries: make(map[string]string)}
}

func (m *MemorySecrets) SetSecret(key, value string) error {
	m.mu.Lock()
	m.entries[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemorySecrets) GetSecret(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *MemorySecrets) DeleteSecret(key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored secrets.
func (m *MemorySecrets) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// MemoryPreferences is a PreferenceStore backed by a map.
type MemoryPreferences struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMemoryPreferences creates a new in-memory preference store.
func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{entries: make(map[string][]byte)}
}

func (m *MemoryPreferences) SetPreference(key string, value []byte) error {
	m.mu.Lock()
	m.entries[key] = bytes.Clone(value)
	m.mu.Unlock()
	return nil
}

func (m *MemoryPreferences) GetPreference(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(value), nil
}

func (m *MemoryPreferences) DeletePreference(key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
