package session

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds every request made by the session manager.
const DefaultTimeout = 30 * time.Second

// DefaultBaseURL is the API served by a local development server.
const DefaultBaseURL = "http://localhost:8080/api/v1"

type config struct {
	baseURL        string
	httpClient     *http.Client
	timeout        time.Duration
	now            func() time.Time
	refreshEnabled bool
	userAgent      string
}

// An Option customizes a Manager.
type Option func(*config)

// WithBaseURL sets the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(cfg *config) {
		cfg.baseURL = baseURL
	}
}

// WithHTTPClient sets the client used for the authentication endpoints.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = client
	}
}

// WithTimeout bounds each request made by the manager.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = timeout
	}
}

// WithClock sets the clock used to judge token expiry.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		cfg.now = now
	}
}

// WithRefreshEnabled toggles token refresh. When disabled every refresh
// fails and logs the user out.
func WithRefreshEnabled(enabled bool) Option {
	return func(cfg *config) {
		cfg.refreshEnabled = enabled
	}
}

// WithUserAgent sets the User-Agent header of authentication requests.
func WithUserAgent(userAgent string) Option {
	return func(cfg *config) {
		cfg.userAgent = userAgent
	}
}

func getConfig(options ...Option) *config {
	cfg := new(config)
	WithBaseURL(DefaultBaseURL)(cfg)
	WithHTTPClient(http.DefaultClient)(cfg)
	WithTimeout(DefaultTimeout)(cfg)
	WithClock(time.Now)(cfg)
	WithRefreshEnabled(true)(cfg)
	for _, option := range options {
		option(cfg)
	}
	return cfg
}
