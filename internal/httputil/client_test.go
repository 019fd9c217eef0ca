package httputil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomerium/storefront/internal/log"
	"github.com/pomerium/storefront/pkg/telemetry/requestid"
)

func TestLoggingClient(t *testing.T) {
	var buf bytes.Buffer
	original := log.Logger()
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)
	log.SetLogger(&l)
	originalLevel := log.GetLevel()
	log.SetLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.SetLogger(original)
		log.SetLevel(originalLevel)
	})

	var gotRequestID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = requestid.FromHTTPHeader(r.Header)
		w.WriteHeader(http.StatusTeapot)
	}))
	t.Cleanup(ts.Close)

	client := NewLoggingClient(nil, 5*time.Second, func(evt *zerolog.Event) *zerolog.Event {
		return evt.Str("component", "test")
	})
	assert.Equal(t, 5*time.Second, client.Timeout)
	assert.Zero(t, http.DefaultClient.Timeout, "the base client is copied")

	req, err := http.NewRequestWithContext(requestid.WithValue(t.Context(), "req-42"), http.MethodGet, ts.URL+"/products", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret-token")
	res, err := client.Do(req)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, "req-42", gotRequestID)
	out := buf.String()
	assert.Contains(t, out, `"path":"/products"`)
	assert.Contains(t, out, `"response-code":418`)
	assert.Contains(t, out, `"request-id":"req-42"`)
	assert.Contains(t, out, `"authorized":true`)
	assert.Contains(t, out, `"component":"test"`)
	assert.NotContains(t, out, "secret-token")
}

func TestRoundTripperFunc(t *testing.T) {
	t.Parallel()

	called := false
	rt := RoundTripperFunc(func(_ *http.Request) (*http.Response, error) {
		called = true
		return &http.Response{StatusCode: http.StatusNoContent}, nil
	})
	res, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestGetInsecureTransport(t *testing.T) {
	t.Parallel()

	tr := GetInsecureTransport()
	assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)
	assert.NotSame(t, http.DefaultTransport, tr)
}
