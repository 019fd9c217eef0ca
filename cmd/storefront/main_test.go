package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomerium/storefront/internal/testutil"
)

// fakeStore is a minimal storefront API.
type fakeStore struct {
	t         *testing.T
	token     string
	rejectAll atomic.Bool
	listings  atomic.Int32
}

func (s *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	authorized := r.Header.Get("Authorization") == "Bearer "+s.token && !s.rejectAll.Load()

	switch r.URL.Path {
	case "/api/v1/auth/login":
		var req struct {
			UsernameOrEmail string `json:"username_or_email"`
			Password        string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.UsernameOrEmail != "alice" || req.Password != "Secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"invalid credentials"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "Login successful",
			"token":   s.token,
			"user": map[string]any{
				"id": 1, "username": "alice", "email": "alice@example.com",
				"first_name": "Alice", "last_name": "Liddell",
				"created_at": "2025-07-26T10:00:00.123456Z",
			},
		})
	case "/api/v1/auth/refresh":
		w.WriteHeader(http.StatusUnauthorized)
	case "/api/v1/auth/register":
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"message":"User registered successfully"}`)
	case "/api/v1/products":
		s.listings.Add(1)
		if s.rejectAll.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `[
			{"id":1,"name":"Running Shoe","price":100,"discount":20,"store":"Sporty","image_urls":[]},
			{"id":2,"name":"Desk Lamp","price":40,"discount":0,"store":"Homey","image_urls":[]}
		]`)
	case "/api/v1/categories/3/products":
		_, _ = io.WriteString(w, `[{"id":2,"name":"Desk Lamp","price":40,"discount":0,"store":"Homey","image_urls":[]}]`)
	case "/api/v1/categories":
		_, _ = io.WriteString(w, `[{"id":3,"name":"Home"}]`)
	default:
		assert.Fail(s.t, "unexpected request", "%s %s (authorized=%v)", r.Method, r.URL.Path, authorized)
		w.WriteHeader(http.StatusNotFound)
	}
}

type harness struct {
	store      *fakeStore
	configFile string
	dir        string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s := &fakeStore{t: t, token: testutil.NewTokenExpiringIn(t, "alice", time.Hour)}
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(strings.Join([]string{
		"api_base_url: " + srv.URL + "/api/v1",
		"secret_backend: file",
		"data_dir: " + filepath.Join(dir, "data"),
		"metrics_textfile: " + filepath.Join(dir, "metrics.prom"),
		"log_level: error",
	}, "\n")), 0o600))
	return &harness{store: s, configFile: configFile, dir: dir}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	args = append([]string{"--config", h.configFile}, args...)
	code = run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestSessionCommands(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	code, _, stderr := h.run(t, "", "token")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not logged in")

	code, stdout, stderr := h.run(t, "alice\nSecret123\n", "login")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Logged in as Alice Liddell")

	code, stdout, _ = h.run(t, "", "whoami")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "alice@example.com")
	assert.Contains(t, stdout, "2025-07-26")

	code, stdout, _ = h.run(t, "", "status")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "logged_in")

	code, stdout, _ = h.run(t, "", "token")
	assert.Equal(t, 0, code)
	assert.Equal(t, h.store.token, strings.TrimSpace(stdout))

	code, stdout, _ = h.run(t, "", "logout")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Logged out")

	code, stdout, _ = h.run(t, "", "status")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "logged_out")

	code, _, stderr = h.run(t, "", "whoami")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not logged in")
}

func TestLoginInvalidCredentials(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	code, _, stderr := h.run(t, "Secret124\n", "login", "--username", "alice")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid username or password")
	assert.Contains(t, stderr, "Please check your username and password")
}

func TestRegister(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	code, stdout, stderr := h.run(t, "Secret123\nSecret123\n", "register",
		"--first-name", "Bob", "--last-name", "Builder", "--username", "bob", "--email", "bob@example.com")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "User registered successfully")

	code, _, stderr = h.run(t, "Secret123\nSecret321\n", "register",
		"--first-name", "Bob", "--last-name", "Builder", "--username", "bob", "--email", "bob@example.com")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "passwords do not match")
}

func TestCatalogCommands(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	code, stdout, stderr := h.run(t, "", "products")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Running Shoe")
	assert.Contains(t, stdout, "80.00 (-20%)")
	assert.Contains(t, stdout, "Desk Lamp")

	code, stdout, _ = h.run(t, "", "products", "--search", "LAMP")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Desk Lamp")
	assert.NotContains(t, stdout, "Running Shoe")

	code, stdout, _ = h.run(t, "", "products", "--category", "3")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Desk Lamp")
	assert.NotContains(t, stdout, "Running Shoe")

	code, stdout, _ = h.run(t, "", "products", "--search", "bicycle")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "No products found")

	code, stdout, _ = h.run(t, "", "categories")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Home")

	metrics, err := os.ReadFile(filepath.Join(h.dir, "metrics.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "storefront_catalog_cache_requests_total")
}

func TestProductsCachedAcrossRuns(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	for range 2 {
		code, stdout, stderr := h.run(t, "", "products")
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, stdout, "Running Shoe")
	}
	assert.EqualValues(t, 1, h.store.listings.Load())

	code, _, stderr := h.run(t, "", "products", "--refresh")
	require.Equal(t, 0, code, stderr)
	assert.EqualValues(t, 2, h.store.listings.Load())
}

func TestFavoritesCommands(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	code, stdout, _ := h.run(t, "", "favorites", "list")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "No favorites yet")

	code, stdout, stderr := h.run(t, "", "favorites", "toggle", "1")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Added Running Shoe to favorites")

	code, stdout, _ = h.run(t, "", "favorites", "list")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Running Shoe")

	code, stdout, _ = h.run(t, "", "products")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "★")

	code, stdout, _ = h.run(t, "", "favorites", "toggle", "1")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Removed Running Shoe from favorites")

	code, _, stderr = h.run(t, "", "favorites", "toggle", "99")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "product 99 not found")

	code, _, stderr = h.run(t, "", "favorites", "toggle", "one")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `invalid product id "one"`)
}

func TestRejectedSession(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	code, _, stderr := h.run(t, "alice\nSecret123\n", "login")
	require.Equal(t, 0, code, stderr)

	h.store.rejectAll.Store(true)
	code, _, stderr = h.run(t, "", "products")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "authentication required, run `storefront login`")

	code, stdout, _ := h.run(t, "", "status")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "logged_out", "a failed refresh logs the user out")
}

func TestBadConfig(t *testing.T) {
	t.Parallel()

	fp := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(fp, []byte("environment: staging\n"), 0o600))

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--config", fp, "status"}, strings.NewReader(""), &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "invalid environment")
}
