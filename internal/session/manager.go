package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pomerium/storefront/internal/adapter"
	"github.com/pomerium/storefront/internal/apiclient"
	"github.com/pomerium/storefront/internal/log"
	"github.com/pomerium/storefront/internal/telemetry/metrics"
	"github.com/pomerium/storefront/pkg/authtoken"
)

// A Manager owns the session. It is safe for concurrent use.
//
// Login, logout and refresh are serialized: at most one of them changes the
// credential record at a time, and concurrent refreshes share one round trip.
type Manager struct {
	cfg   *config
	store CredentialStore
	codec authtoken.Codec
	api   *apiclient.Client

	mu           sync.Mutex
	refreshGroup singleflight.Group
	refreshing   atomic.Bool
}

// New creates a new Manager persisting its state in store.
func New(store CredentialStore, options ...Option) *Manager {
	cfg := getConfig(options...)
	chain := adapter.NewChain(adapter.Accept("application/json"))
	if cfg.userAgent != "" {
		chain = chain.Append(adapter.UserAgent(cfg.userAgent))
	}
	return &Manager{
		cfg:   cfg,
		store: store,
		codec: authtoken.Codec{Now: cfg.now},
		api: apiclient.New(cfg.baseURL,
			apiclient.WithHTTPClient(cfg.httpClient),
			apiclient.WithTimeout(cfg.timeout),
			apiclient.WithChain(chain),
		),
	}
}

// IsLoggedIn reports whether the credential record is active and holds an
// unexpired token. An expired token logs the user out.
func (m *Manager) IsLoggedIn(ctx context.Context) bool {
	if _, ok := m.Token(ctx); !ok {
		return false
	}
	return m.store.IsLoggedIn()
}

// Token returns the stored token if it has not expired. An expired token
// logs the user out.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	token, ok := m.store.Get()
	if !ok {
		return "", false
	}
	if m.codec.IsExpired(token) {
		log.Info(ctx).Str("token_id", log.TokenID(token)).Msg("session: token expired, logging out")
		m.forceLogout(ctx, token, metrics.LogoutExpired)
		return "", false
	}
	return token, true
}

// CurrentUser returns the profile of the logged in user. Without a valid
// token the user is logged out and no profile is returned.
func (m *Manager) CurrentUser(ctx context.Context) (*User, bool) {
	if _, ok := m.Token(ctx); !ok {
		m.forceLogout(ctx, "", metrics.LogoutExpired)
		return nil, false
	}
	var user User
	if !m.store.GetUser(&user) {
		return nil, false
	}
	return &user, true
}

// TokenRemainingTime returns how long the stored token stays valid.
func (m *Manager) TokenRemainingTime(ctx context.Context) (time.Duration, bool) {
	token, ok := m.Token(ctx)
	if !ok {
		return 0, false
	}
	return m.codec.RemainingLifetime(token)
}

// AuthHeaders returns the Authorization header for the stored token, or no
// headers if there is no valid token.
func (m *Manager) AuthHeaders(ctx context.Context) map[string]string {
	token, ok := m.Token(ctx)
	if !ok {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// State returns the current authentication state. It has no side effects.
func (m *Manager) State() State {
	if m.refreshing.Load() {
		return StateRefreshing
	}
	token, ok := m.store.Get()
	if !ok || !m.store.IsLoggedIn() || m.codec.IsExpired(token) {
		return StateLoggedOut
	}
	return StateLoggedIn
}

// Snapshot returns the current session if there is a valid token.
func (m *Manager) Snapshot(ctx context.Context) (*Session, bool) {
	token, ok := m.Token(ctx)
	if !ok {
		return nil, false
	}
	claims, ok := m.codec.Decode(token)
	if !ok {
		return nil, false
	}
	s := &Session{
		Token:  token,
		Claims: claims,
		Active: m.store.IsLoggedIn(),
	}
	var user User
	if m.store.GetUser(&user) {
		s.User = &user
	}
	return s, true
}

// Logout clears the credential record. It never contacts the server.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.clearLocked(ctx, metrics.LogoutUser)
}

// forceLogout clears the credential record unless it changed since token was
// observed. With an empty token the record is cleared unless it holds a
// valid token.
func (m *Manager) forceLogout(ctx context.Context, token, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.store.Get()
	switch {
	case ok && token != "" && current != token:
		return
	case ok && token == "" && !m.codec.IsExpired(current):
		return
	}
	if err := m.clearLocked(ctx, reason); err != nil {
		log.Error().Err(err).Msg("session: failed to clear credentials")
	}
}

func (m *Manager) clearLocked(ctx context.Context, reason string) error {
	_, hadToken := m.store.Get()
	err := m.store.Clear()
	if hadToken {
		metrics.RecordSessionLogout(reason)
		log.Debug(ctx).Str("reason", reason).Msg("session: logged out")
	}
	return err
}
