package requestid

import (
	"net/http"
)

type transport struct {
	base http.RoundTripper
}

// NewRoundTripper creates a new RoundTripper which adds a request id to the
// outgoing headers. The id comes from the request context when present,
// otherwise a new one is generated for every attempt.
func NewRoundTripper(base http.RoundTripper) http.RoundTripper {
	return &transport{base: base}
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(headerName) == "" {
		requestID := FromContext(req.Context())
		if requestID == "" {
			requestID = New()
		}
		req = req.Clone(req.Context())
		req.Header.Set(headerName, requestID)
	}

	return t.base.RoundTrip(req)
}

// FromHTTPHeader returns the request id in the HTTP header. If no request id exists,
// an empty string is returned.
func FromHTTPHeader(hdr http.Header) string {
	return hdr.Get(headerName)
}
