package credstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/pomerium/storefront/internal/log"
)

const (
	dirMode  = 0o700
	fileMode = 0o600
)

// FileSecrets stores each secret in its own file, readable only by the
// current user. It is used when no OS keyring is available.
type FileSecrets struct {
	dir string
}

// NewFileSecrets creates a new file secret store in dir.
func NewFileSecrets(dir string) (*FileSecrets, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("credstore: error creating secrets directory: %w", err)
	}
	return &FileSecrets{dir: dir}, nil
}

func (f *FileSecrets) path(key string) string {
	return filepath.Join(f.dir, hash(key)+".secret")
}

func (f *FileSecrets) SetSecret(key, value string) error {
	if err := writeFile(f.path(key), []byte(value)); err != nil {
		return fmt.Errorf("credstore: error writing secret: %w", err)
	}
	return nil
}

func (f *FileSecrets) GetSecret(key string) (string, error) {
	raw, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	} else if err != nil {
		return "", fmt.Errorf("credstore: error reading secret: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func (f *FileSecrets) DeleteSecret(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("credstore: error removing secret: %w", err)
	}
	return nil
}

// FilePreferences stores preferences in a single JSON document. The document
// is re-read on every access so that concurrent CLI invocations observe each
// other's writes.
type FilePreferences struct {
	mu   sync.Mutex
	path string
}

// NewFilePreferences creates a new preference store backed by the file at path.
func NewFilePreferences(path string) (*FilePreferences, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return nil, fmt.Errorf("credstore: error creating preferences directory: %w", err)
	}
	return &FilePreferences{path: path}, nil
}

// SetPreference stores value, which must be a JSON document.
func (f *FilePreferences) SetPreference(key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("credstore: preference %q is not valid json", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	doc[key] = json.RawMessage(bytes.Clone(value))
	return f.save(doc)
}

func (f *FilePreferences) GetPreference(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	value, ok := doc[key]
	if !ok {
		return nil, ErrNotFound
	}
	return value, nil
}

func (f *FilePreferences) DeletePreference(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return f.save(doc)
}

func (f *FilePreferences) load() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	} else if err != nil {
		return nil, fmt.Errorf("credstore: error reading preferences: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		// the next save replaces the corrupt document
		log.Warn(context.Background()).Err(err).Str("path", f.path).
			Msg("credstore: ignoring corrupt preferences file")
		return make(map[string]json.RawMessage), nil
	}
	return doc, nil
}

func (f *FilePreferences) save(doc map[string]json.RawMessage) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("credstore: error encoding preferences: %w", err)
	}
	if err := writeFile(f.path, raw); err != nil {
		return fmt.Errorf("credstore: error writing preferences: %w", err)
	}
	return nil
}

// writeFile replaces path atomically and restricts it to the current user.
func writeFile(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return err
	}
	return os.Chmod(path, fileMode)
}
