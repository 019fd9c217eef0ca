// Package httputil builds the HTTP clients used to talk to the storefront API.
package httputil

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/pomerium/storefront/internal/log"
	"github.com/pomerium/storefront/internal/telemetry/metrics"
	"github.com/pomerium/storefront/pkg/telemetry/requestid"
)

// A RoundTripperFunc is an ordinary function used as an http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls f(req).
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type loggingRoundTripper struct {
	base      http.RoundTripper
	customize []func(event *zerolog.Event) *zerolog.Event
}

func (l loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	res, err := l.base.RoundTrip(req)
	statusCode := 0
	if res != nil {
		statusCode = res.StatusCode
	}
	evt := log.Debug(req.Context()).
		Str("method", req.Method).
		Str("authority", req.URL.Host).
		Str("path", req.URL.Path).
		Str("request-id", requestid.FromHTTPHeader(req.Header)).
		Bool("authorized", req.Header.Get("Authorization") != "").
		Dur("duration", time.Since(start)).
		Int("response-code", statusCode)
	if err != nil {
		evt = evt.Err(err)
	}
	for _, f := range l.customize {
		evt = f(evt)
	}
	evt.Msg("outbound http-request")
	return res, err
}

// NewLoggingRoundTripper creates a http.RoundTripper that will log requests.
// Header values are never logged.
func NewLoggingRoundTripper(base http.RoundTripper, customize ...func(event *zerolog.Event) *zerolog.Event) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return loggingRoundTripper{base: base, customize: customize}
}

// NewLoggingClient creates a new http.Client that tags every request with a
// request id, records metrics and logs requests. Attempts time out after
// timeout; zero disables the client side timeout.
func NewLoggingClient(base *http.Client, timeout time.Duration, customize ...func(event *zerolog.Event) *zerolog.Event) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	newClient := new(http.Client)
	*newClient = *base
	if timeout > 0 {
		newClient.Timeout = timeout
	}

	var rt http.RoundTripper = NewLoggingRoundTripper(newClient.Transport, customize...)
	rt = metrics.HTTPMetricsRoundTripper()(rt)
	rt = requestid.NewRoundTripper(rt)
	newClient.Transport = rt
	return newClient
}

// GetInsecureTransport gets an HTTP transport that does not verify server
// certificates. Only used against development servers.
func GetInsecureTransport() *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialTLS = nil
	transport.DialTLSContext = nil
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	return transport
}
