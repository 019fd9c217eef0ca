package apierror

import (
	"errors"
	"net/http"
)

// Header names that may carry the id of a request.
const (
	RequestIDHeader  = "X-Request-Id"
	ResponseIDHeader = "X-Response-Id"
)

// WithRequestID attaches the request id found in headers to err. Errors that
// are not an *Error are wrapped as unknown errors.
func WithRequestID(err error, headers http.Header) error {
	if err == nil {
		return nil
	}
	id := headers.Get(ResponseIDHeader)
	if id == "" {
		id = headers.Get(RequestIDHeader)
	}
	if id == "" {
		return err
	}

	var e *Error
	if !errors.As(err, &e) {
		return &Error{Kind: KindUnknown, RequestID: id, Err: err}
	}
	cp := *e
	cp.RequestID = id
	return &cp
}
