package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	id := New()
	ctx := WithValue(context.Background(), id)
	assert.Equal(t, id, FromContext(ctx))
	assert.Empty(t, FromContext(context.Background()))

	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestRoundTripper(t *testing.T) {
	t.Parallel()

	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = append(seen, FromHTTPHeader(r.Header))
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{Transport: NewRoundTripper(http.DefaultTransport)}

	get := func(ctx context.Context, hdr string) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		if hdr != "" {
			req.Header.Set(headerName, hdr)
		}
		res, err := client.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, hdr, req.Header.Get(headerName), "caller's request is not modified")
	}

	get(WithValue(context.Background(), "from-context"), "")
	get(context.Background(), "explicit")
	get(context.Background(), "")

	require.Len(t, seen, 3)
	assert.Equal(t, "from-context", seen[0])
	assert.Equal(t, "explicit", seen[1])
	assert.NotEmpty(t, seen[2])
}
