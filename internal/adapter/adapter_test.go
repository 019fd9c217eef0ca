package adapter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomerium/storefront/internal/adapter"
	"github.com/pomerium/storefront/internal/credstore"
	"github.com/pomerium/storefront/internal/session"
	"github.com/pomerium/storefront/internal/testutil"
)

type staticSource map[string]string

func (s staticSource) AuthHeaders(context.Context) map[string]string { return s }

func TestChain(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(id string) adapter.Adapter {
		return adapter.AdapterFunc(func(req *http.Request) (*http.Request, error) {
			order = append(order, id)
			return req, nil
		})
	}

	base := adapter.NewChain(mark("a1"), mark("a2"))
	ext := base.Append(mark("a3"))
	assert.Equal(t, 2, base.Len(), "append leaves the original untouched")
	assert.Equal(t, 3, ext.Len())

	_, err := ext.Apply(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2", "a3"}, order)

	boom := errors.New("boom")
	failing := adapter.NewChain(adapter.AdapterFunc(func(*http.Request) (*http.Request, error) {
		return nil, boom
	}), mark("never"))
	order = nil
	_, err = failing.Apply(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, order)
}

func TestAuth(t *testing.T) {
	t.Parallel()

	t.Run("token", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req, err := adapter.Auth(staticSource{"Authorization": "Bearer T"}).Adapt(req)
		require.NoError(t, err)
		assert.Equal(t, "Bearer T", req.Header.Get("Authorization"))
	})

	t.Run("no token removes stale header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer stale")
		req, err := adapter.Auth(staticSource{}).Adapt(req)
		require.NoError(t, err)
		_, ok := req.Header["Authorization"]
		assert.False(t, ok)
	})

	t.Run("session manager", func(t *testing.T) {
		t.Parallel()

		store := credstore.New(credstore.NewMemorySecrets(), credstore.NewMemoryPreferences())
		m := session.New(store)
		auth := adapter.Auth(m)

		req, err := auth.Adapt(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Empty(t, req.Header.Get("Authorization"))

		token := testutil.NewTokenExpiringIn(t, "alice", time.Hour)
		require.NoError(t, store.Save(token))
		require.NoError(t, store.SetLoggedIn(true))

		// headers are computed at send time
		req, err = auth.Adapt(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, "Bearer "+token, req.Header.Get("Authorization"))
	})
}

func TestHeaders(t *testing.T) {
	t.Parallel()

	chain := adapter.NewChain(
		adapter.StaticHeaders(map[string]string{"X-Client": "cli"}),
		adapter.UserAgent("storefront-cli/test"),
		adapter.Accept("application/json"),
	)
	req, err := chain.Apply(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "cli", req.Header.Get("X-Client"))
	assert.Equal(t, "storefront-cli/test", req.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/plain")
	req, err = chain.Apply(req)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", req.Header.Get("Accept"))
}
