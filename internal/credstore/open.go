package credstore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pomerium/storefront/internal/log"
)

// Secret backends.
const (
	BackendAuto    = "auto"
	BackendKeyring = "keyring"
	BackendFile    = "file"
	BackendMemory  = "memory"
)

// NewSecretStore creates the secret store for backend. The auto backend
// uses the OS keyring when it is available and falls back to files in dir.
func NewSecretStore(ctx context.Context, backend, dir string) (SecretStore, error) {
	switch backend {
	case BackendKeyring:
		return NewKeyringSecrets(DefaultKeyringService), nil
	case BackendFile:
		return NewFileSecrets(filepath.Join(dir, "secrets"))
	case BackendMemory:
		return NewMemorySecrets(), nil
	case BackendAuto, "":
		k := NewKeyringSecrets(DefaultKeyringService)
		if k.Available() {
			return k, nil
		}
		log.Warn(ctx).Str("dir", dir).Msg("credstore: OS keyring unavailable, storing secrets in files")
		return NewFileSecrets(filepath.Join(dir, "secrets"))
	default:
		return nil, fmt.Errorf("credstore: unknown secret backend %q", backend)
	}
}

// NewPreferenceStore creates the preference store for backend. Every backend
// except memory keeps preferences in dir.
func NewPreferenceStore(backend, dir string) (PreferenceStore, error) {
	if backend == BackendMemory {
		return NewMemoryPreferences(), nil
	}
	return NewFilePreferences(filepath.Join(dir, "preferences.json"))
}

// Open creates the Store for the API server at baseURL.
func Open(ctx context.Context, backend, dir, baseURL string) (*Store, error) {
	secrets, err := NewSecretStore(ctx, backend, dir)
	if err != nil {
		return nil, err
	}
	prefs, err := NewPreferenceStore(backend, dir)
	if err != nil {
		return nil, err
	}
	return New(secrets, prefs, WithNamespace(Namespace(baseURL))), nil
}

// OpenCache creates the store that cached data of the API server at baseURL
// is kept in. Every backend except memory keeps it in dir.
func OpenCache(backend, dir, baseURL string) (PreferenceStore, error) {
	if backend == BackendMemory {
		return NewMemoryPreferences(), nil
	}
	prefs, err := NewFilePreferences(filepath.Join(dir, "cache.json"))
	if err != nil {
		return nil, err
	}
	return WithPrefix(prefs, Namespace(baseURL)), nil
}
