package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pomerium/storefront/internal/log"
)

// A Store keeps the credential record of one API server: the bearer token,
// the user profile, the token expiry and the logged in flag.
type Store struct {
	secrets SecretStore
	prefs   PreferenceStore
	ns      string
}

// An Option customizes a Store.
type Option func(*Store)

// WithNamespace keeps the record apart from records of other API servers.
func WithNamespace(ns string) Option {
	return func(s *Store) {
		s.ns = ns
	}
}

// New creates a new Store.
func New(secrets SecretStore, prefs PreferenceStore, opts ...Option) *Store {
	s := &Store{secrets: secrets, prefs: prefs}
	for _, opt := range opts {
		opt(s)
	}
	s.prefs = WithPrefix(s.prefs, s.ns)
	return s
}

// Preferences returns the namespaced preference store backing s.
func (s *Store) Preferences() PreferenceStore {
	return s.prefs
}

// Save stores token, replacing any previous token.
func (s *Store) Save(token string) error {
	key := namespacedKey(s.ns, KeyAuthToken)
	// some keychains reject writes to an existing item
	if err := s.secrets.DeleteSecret(key); err != nil {
		return err
	}
	if err := s.secrets.SetSecret(key, token); err != nil {
		return err
	}
	log.Debug(context.Background()).Str("token_id", log.TokenID(token)).Msg("credstore: saved token")
	return nil
}

// Get returns the stored token.
func (s *Store) Get() (string, bool) {
	token, err := s.secrets.GetSecret(namespacedKey(s.ns, KeyAuthToken))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn(context.Background()).Err(err).Msg("credstore: failed to read token")
		}
		return "", false
	}
	return token, token != ""
}

// Delete removes the stored token. Deleting a missing token succeeds.
func (s *Store) Delete() error {
	return s.secrets.DeleteSecret(namespacedKey(s.ns, KeyAuthToken))
}

// SaveUser stores the JSON encoding of user.
func (s *Store) SaveUser(user any) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("credstore: error encoding user: %w", err)
	}
	return s.prefs.SetPreference(KeyCurrentUser, raw)
}

// GetUser decodes the stored user into dst. It reports false if there is no
// stored user or it cannot be decoded.
func (s *Store) GetUser(dst any) bool {
	return s.getJSON(KeyCurrentUser, dst)
}

// DeleteUser removes the stored user.
func (s *Store) DeleteUser() error {
	return s.prefs.DeletePreference(KeyCurrentUser)
}

// IsLoggedIn returns the logged in flag.
func (s *Store) IsLoggedIn() bool {
	var loggedIn bool
	return s.getJSON(KeyIsLoggedIn, &loggedIn) && loggedIn
}

// SetLoggedIn sets the logged in flag.
func (s *Store) SetLoggedIn(loggedIn bool) error {
	raw, _ := json.Marshal(loggedIn)
	return s.prefs.SetPreference(KeyIsLoggedIn, raw)
}

// SetTokenExpiry records when the stored token expires.
func (s *Store) SetTokenExpiry(expiry time.Time) error {
	raw, _ := json.Marshal(expiry.UTC().Format(time.RFC3339))
	return s.prefs.SetPreference(KeyTokenExpiry, raw)
}

// TokenExpiry returns the recorded token expiry.
func (s *Store) TokenExpiry() (time.Time, bool) {
	var str string
	if !s.getJSON(KeyTokenExpiry, &str) {
		return time.Time{}, false
	}
	expiry, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return time.Time{}, false
	}
	return expiry, true
}

// Clear removes the whole credential record. Every part is removed even if
// removing another part fails.
func (s *Store) Clear() error {
	return errors.Join(
		s.Delete(),
		s.DeleteUser(),
		s.prefs.DeletePreference(KeyTokenExpiry),
		s.prefs.DeletePreference(KeyIsLoggedIn),
	)
}

func (s *Store) getJSON(key string, dst any) bool {
	raw, err := s.prefs.GetPreference(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn(context.Background()).Err(err).Str("key", key).Msg("credstore: failed to read preference")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Warn(context.Background()).Err(err).Str("key", key).Msg("credstore: ignoring malformed preference")
		return false
	}
	return true
}
