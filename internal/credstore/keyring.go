package credstore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the service name secrets are filed under in the
// OS keyring.
const DefaultKeyringService = "storefront"

// KeyringSecrets stores secrets in the OS keyring: the macOS keychain, the
// freedesktop secret service or the Windows credential manager.
type KeyringSecrets struct {
	service string
}

// NewKeyringSecrets creates a new keyring secret store for service.
func NewKeyringSecrets(service string) *KeyringSecrets {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringSecrets{service: service}
}

func (k *KeyringSecrets) SetSecret(key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("credstore: keyring set: %w", err)
	}
	return nil
}

func (k *KeyringSecrets) GetSecret(key string) (string, error) {
	value, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	} else if err != nil {
		return "", fmt.Errorf("credstore: keyring get: %w", err)
	}
	return value, nil
}

func (k *KeyringSecrets) DeleteSecret(key string) error {
	err := keyring.Delete(k.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("credstore: keyring delete: %w", err)
	}
	return nil
}

// Available reports whether the keyring can be used by writing and removing
// a probe item.
func (k *KeyringSecrets) Available() bool {
	const probe = "__storefront_probe__"
	if err := keyring.Set(k.service, probe, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(k.service, probe)
	return true
}
