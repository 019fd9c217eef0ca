// Package requestid tags outgoing API requests with an id that is echoed in
// logs and errors so a failure can be matched with server side records.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

const headerName = "X-Request-Id"

type contextKey struct{}

// New creates a new request id.
func New() string {
	return uuid.NewString()
}

// WithValue returns a copy of ctx carrying requestID.
func WithValue(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

// FromContext returns the request id stored in ctx, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
