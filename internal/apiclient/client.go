// Package apiclient sends requests to the storefront API. Every request runs
// through an adapter chain at send time, and a request rejected with 401 is
// retried exactly once after a successful token refresh.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pomerium/storefront/internal/adapter"
	"github.com/pomerium/storefront/internal/log"
	"github.com/pomerium/storefront/pkg/apierror"
)

const maxResponseSize = 10 << 20

// A TokenRefresher refreshes the session after the API rejected a request.
type TokenRefresher interface {
	// ShouldRefresh reports whether res calls for a token refresh.
	ShouldRefresh(res *http.Response) bool
	// RefreshTokenIfNeeded refreshes the token res was rejected for and
	// reports whether a retry may succeed.
	RefreshTokenIfNeeded(ctx context.Context, res *http.Response) bool
}

// A Monitor reports network connectivity.
type Monitor interface {
	IsConnected() bool
}

// A Client sends requests to the storefront API.
type Client struct {
	cfg     *config
	baseURL string
}

// New creates a new Client for the API at baseURL. A malformed base URL is
// reported by the first request.
func New(baseURL string, options ...Option) *Client {
	return &Client{
		cfg:     getConfig(options...),
		baseURL: baseURL,
	}
}

// Fetch sends ep and decodes the JSON response into a T.
func Fetch[T any](ctx context.Context, c *Client, ep Endpoint) (T, error) {
	var out T
	err := c.Do(ctx, ep, &out)
	return out, err
}

// Do sends ep and decodes the JSON response into out. A nil out discards the
// response body.
//
// If the API responds with 401 and the refresher agrees to refresh, the
// request is rebuilt, adapted again and resent once. Any other failure is
// returned to the caller as is.
func (c *Client) Do(ctx context.Context, ep Endpoint, out any) error {
	res, body, err := c.Send(ctx, ep)
	if err != nil {
		return err
	}

	if r := c.cfg.refresher; r != nil && res.StatusCode == http.StatusUnauthorized && r.ShouldRefresh(res) {
		if r.RefreshTokenIfNeeded(ctx, res) {
			log.Debug(ctx).Str("path", ep.Path).Msg("apiclient: token refreshed, retrying request")
			res, body, err = c.Send(ctx, ep)
			if err != nil {
				return err
			}
		} else {
			log.Debug(ctx).Str("path", ep.Path).Msg("apiclient: token refresh failed")
		}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return responseError(res, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 && isNoContent(res) {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apierror.Wrap(apierror.KindDecodingError, err)
	}
	return nil
}

// Send builds ep, runs it through the adapter chain and sends it once. The
// response body is read and closed. Non-2xx responses are not errors.
func (c *Client) Send(ctx context.Context, ep Endpoint) (*http.Response, []byte, error) {
	endpoint, err := c.resolve(ep)
	if err != nil {
		return nil, nil, err
	}

	if m := c.cfg.monitor; m != nil && !m.IsConnected() {
		return nil, nil, apierror.ErrNoInternet
	}

	var payload []byte
	if ep.Body != nil {
		payload, err = json.Marshal(ep.Body)
		if err != nil {
			return nil, nil, apierror.Unknown("failed to encode request body", err)
		}
	}

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, ep.Method, endpoint, body)
	if err != nil {
		return nil, nil, apierror.Wrap(apierror.KindInvalidURL, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range ep.Headers {
		req.Header.Set(k, v)
	}
	req, err = c.cfg.adapters.Apply(req)
	if err != nil {
		return nil, nil, err
	}

	res, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return nil, nil, apierror.Wrap(apierror.KindNetworkError, err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return nil, nil, apierror.Wrap(apierror.KindNetworkError, err)
	}
	return res, respBody, nil
}

func (c *Client) resolve(ep Endpoint) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", apierror.New(apierror.KindInvalidURL, c.baseURL)
	}
	u := base.JoinPath(ep.Path)
	if len(ep.Query) > 0 {
		u.RawQuery = ep.Query.Encode()
	}
	return u.String(), nil
}

func responseError(res *http.Response, body []byte) error {
	msg := apierror.ReadMessage(bytes.NewReader(body))
	if msg == "" {
		msg = strings.ToLower(http.StatusText(res.StatusCode))
	}
	err := apierror.Server(res.StatusCode, msg)
	if res.Request != nil {
		err.RequestID = res.Request.Header.Get(apierror.RequestIDHeader)
	}
	return apierror.WithRequestID(err, res.Header)
}

func isNoContent(res *http.Response) bool {
	return res.StatusCode == http.StatusNoContent || res.ContentLength == 0
}

type config struct {
	httpClient *http.Client
	adapters   adapter.Chain
	refresher  TokenRefresher
	monitor    Monitor
	timeout    time.Duration
}

// An Option customizes a Client.
type Option func(*config)

// WithHTTPClient sets the http client used to send requests.
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = client
	}
}

// WithAdapters appends adapters to the chain run on every request.
func WithAdapters(adapters ...adapter.Adapter) Option {
	return func(cfg *config) {
		cfg.adapters = cfg.adapters.Append(adapters...)
	}
}

// WithChain replaces the adapter chain run on every request.
func WithChain(chain adapter.Chain) Option {
	return func(cfg *config) {
		cfg.adapters = chain
	}
}

// WithRefresher enables the refresh and retry of rejected requests.
func WithRefresher(refresher TokenRefresher) Option {
	return func(cfg *config) {
		cfg.refresher = refresher
	}
}

// WithMonitor makes requests fail fast while monitor reports no network.
func WithMonitor(monitor Monitor) Option {
	return func(cfg *config) {
		cfg.monitor = monitor
	}
}

// WithTimeout bounds each attempt. A retry gets a fresh timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = timeout
	}
}

func getConfig(options ...Option) *config {
	cfg := new(config)
	WithHTTPClient(http.DefaultClient)(cfg)
	for _, option := range options {
		option(cfg)
	}
	return cfg
}
