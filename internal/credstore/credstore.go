// Package credstore persists the session credentials of the storefront
// client: the bearer token goes to a secret store, the user profile and the
// login flag go to a preference store.
package credstore

import (
	"errors"
	"strings"

	"github.com/martinlindhe/base36"
	"golang.org/x/crypto/blake2s"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("credstore: not found")

// A SecretStore stores small secret strings by key.
type SecretStore interface {
	SetSecret(key, value string) error
	// GetSecret returns ErrNotFound if key has no value.
	GetSecret(key string) (string, error)
	// DeleteSecret succeeds if key has no value.
	DeleteSecret(key string) error
}

// A PreferenceStore stores non-secret values by key.
type PreferenceStore interface {
	SetPreference(key string, value []byte) error
	// GetPreference returns ErrNotFound if key has no value.
	GetPreference(key string) ([]byte, error)
	// DeletePreference succeeds if key has no value.
	DeletePreference(key string) error
}

// Keys used by the storefront client.
const (
	KeyAuthToken        = "auth_token"
	KeyCurrentUser      = "current_user"
	KeyIsLoggedIn       = "isLoggedIn"
	KeyTokenExpiry      = "token_expiry"
	KeyFavoriteProducts = "favorite_products"
)

// Namespace returns a stable, file name safe identifier for an API base URL
// so that credentials for different servers are kept apart.
func Namespace(baseURL string) string {
	return hash(strings.TrimRight(baseURL, "/"))[:16]
}

func hash(str string) string {
	h := blake2s.Sum256([]byte(str))
	return strings.ToLower(base36.EncodeBytes(h[:]))
}

func namespacedKey(ns, key string) string {
	if ns == "" {
		return key
	}
	return ns + "." + key
}

type prefixedPreferences struct {
	prefix string
	next   PreferenceStore
}

// WithPrefix returns a PreferenceStore that stores every key of next under
// the namespace ns.
func WithPrefix(next PreferenceStore, ns string) PreferenceStore {
	return prefixedPreferences{prefix: ns, next: next}
}

func (p prefixedPreferences) SetPreference(key string, value []byte) error {
	return p.next.SetPreference(namespacedKey(p.prefix, key), value)
}

func (p prefixedPreferences) GetPreference(key string) ([]byte, error) {
	return p.next.GetPreference(namespacedKey(p.prefix, key))
}

func (p prefixedPreferences) DeletePreference(key string) error {
	return p.next.DeletePreference(namespacedKey(p.prefix, key))
}
