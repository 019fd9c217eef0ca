package session

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pomerium/storefront/internal/apiclient"
	"github.com/pomerium/storefront/internal/log"
	"github.com/pomerium/storefront/internal/telemetry/metrics"
	"github.com/pomerium/storefront/pkg/apierror"
)

// RefreshToken exchanges the stored token for a new one. Concurrent calls
// share a single request to the server. The shared request is not cancelled
// when ctx is; ctx only bounds how long the caller waits.
//
// If the refresh fails for any reason the user is logged out and the error
// is a session expired error.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	return m.refreshToken(ctx, "")
}

// refreshToken refreshes the session. If stale is set and the stored token
// already differs from it, another caller has refreshed in the meantime and
// the stored token is returned without contacting the server.
func (m *Manager) refreshToken(ctx context.Context, stale string) (string, error) {
	ch := m.refreshGroup.DoChan("refresh", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.timeout)
		defer cancel()
		return m.refresh(ctx, stale)
	})

	select {
	case <-ctx.Done():
		return "", context.Cause(ctx)
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (m *Manager) refresh(ctx context.Context, stale string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshing.Store(true)
	defer m.refreshing.Store(false)

	token, ok := m.store.Get()
	if ok && stale != "" && token != stale && !m.codec.IsExpired(token) {
		log.Debug(ctx).Str("token_id", log.TokenID(token)).Msg("session: token already refreshed")
		return token, nil
	}

	fail := func(err *apierror.Error) (string, error) {
		metrics.RecordSessionRefresh(metrics.RefreshFailure)
		if clearErr := m.clearLocked(ctx, metrics.LogoutRefresh); clearErr != nil {
			log.Error().Err(clearErr).Msg("session: failed to clear credentials")
		}
		log.Warn(ctx).Err(err).Msg("session: token refresh failed, logged out")
		return "", err
	}

	if !m.cfg.refreshEnabled {
		metrics.RecordSessionRefresh(metrics.RefreshDisabled)
		if err := m.clearLocked(ctx, metrics.LogoutRefresh); err != nil {
			log.Error().Err(err).Msg("session: failed to clear credentials")
		}
		return "", apierror.ErrRefreshNotImplemented
	}
	if !ok {
		return fail(apierror.New(apierror.KindSessionExpired, "no token to refresh"))
	}

	ep := apiclient.Refresh()
	ep.Headers = bearer(token)
	res, body, err := m.api.Send(ctx, ep)
	if err != nil {
		return fail(apierror.Wrap(apierror.KindSessionExpired, err))
	}
	if res.StatusCode != http.StatusOK {
		e := apierror.New(apierror.KindSessionExpired, strings.ToLower(http.StatusText(res.StatusCode)))
		e.StatusCode = res.StatusCode
		return fail(e)
	}

	var out tokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fail(apierror.Wrap(apierror.KindSessionExpired, err))
	}
	if out.User == nil {
		var user User
		if m.store.GetUser(&user) {
			out.User = &user
		}
	}
	s, err := m.storeLocked(ctx, out)
	if err != nil {
		return fail(apierror.Wrap(apierror.KindSessionExpired, err))
	}

	metrics.RecordSessionRefresh(metrics.RefreshSuccess)
	log.Info(ctx).
		Str("token_id", log.TokenID(s.Token)).
		Time("expires", s.Claims.Expiry()).
		Msg("session: token refreshed")
	return s.Token, nil
}

// A RefreshCoordinator decides whether a response calls for a token refresh
// and performs it.
type RefreshCoordinator struct {
	manager *Manager
}

// NewRefreshCoordinator creates a RefreshCoordinator for m.
func NewRefreshCoordinator(m *Manager) *RefreshCoordinator {
	return &RefreshCoordinator{manager: m}
}

// ShouldRefresh reports whether res was rejected for lack of valid
// credentials.
func (c *RefreshCoordinator) ShouldRefresh(res *http.Response) bool {
	return res != nil && res.StatusCode == http.StatusUnauthorized
}

// RefreshTokenIfNeeded refreshes the session after res was rejected and
// reports whether a retry may succeed. If the token res was sent with has
// already been replaced, no refresh is made.
func (c *RefreshCoordinator) RefreshTokenIfNeeded(ctx context.Context, res *http.Response) bool {
	var stale string
	if res != nil && res.Request != nil {
		stale = strings.TrimPrefix(res.Request.Header.Get("Authorization"), "Bearer ")
	}
	_, err := c.manager.refreshToken(ctx, stale)
	return err == nil
}
