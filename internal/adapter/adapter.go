// Package adapter prepares outgoing API requests. Adapters run in order on
// every send, so headers derived from the session always reflect its state
// at the time the request leaves.
package adapter

import (
	"context"
	"net/http"
)

// An Adapter transforms a request before it is sent.
type Adapter interface {
	Adapt(req *http.Request) (*http.Request, error)
}

// AdapterFunc is an ordinary function used as an Adapter.
type AdapterFunc func(req *http.Request) (*http.Request, error)

// Adapt calls f(req).
func (f AdapterFunc) Adapt(req *http.Request) (*http.Request, error) {
	return f(req)
}

// Chain acts as a list of adapters. Chain is effectively immutable: once
// created, it will always hold the same set of adapters in the same order.
type Chain struct {
	adapters []Adapter
}

// NewChain creates a new chain, memorizing the given list of adapters.
func NewChain(adapters ...Adapter) Chain {
	return Chain{append([]Adapter(nil), adapters...)}
}

// Append extends a chain, adding the specified adapters as the last ones to
// run. Append returns a new chain, leaving the original one untouched.
func (c Chain) Append(adapters ...Adapter) Chain {
	newAdapters := make([]Adapter, 0, len(c.adapters)+len(adapters))
	newAdapters = append(newAdapters, c.adapters...)
	newAdapters = append(newAdapters, adapters...)
	return Chain{newAdapters}
}

// Len returns the number of adapters in the chain.
func (c Chain) Len() int {
	return len(c.adapters)
}

// Apply runs every adapter on req, in order, and returns the result. The
// first error stops the chain.
func (c Chain) Apply(req *http.Request) (*http.Request, error) {
	var err error
	for _, a := range c.adapters {
		req, err = a.Adapt(req)
		if err != nil {
			return nil, err
		}
	}
	return req, nil
}

// A HeaderSource computes headers from the current session.
type HeaderSource interface {
	AuthHeaders(ctx context.Context) map[string]string
}

// Auth sets the headers of src on every request. If src provides no
// Authorization header any Authorization header already on the request is
// removed, so a stale token is never sent.
func Auth(src HeaderSource) Adapter {
	return AdapterFunc(func(req *http.Request) (*http.Request, error) {
		headers := src.AuthHeaders(req.Context())
		if _, ok := headers["Authorization"]; !ok {
			req.Header.Del("Authorization")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
}

// StaticHeaders sets fixed headers on every request.
func StaticHeaders(headers map[string]string) Adapter {
	return AdapterFunc(func(req *http.Request) (*http.Request, error) {
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
}

// UserAgent sets the User-Agent header.
func UserAgent(userAgent string) Adapter {
	return StaticHeaders(map[string]string{"User-Agent": userAgent})
}

// Accept sets the Accept header unless the request already has one.
func Accept(contentType string) Adapter {
	return AdapterFunc(func(req *http.Request) (*http.Request, error) {
		if req.Header.Get("Accept") == "" {
			req.Header.Set("Accept", contentType)
		}
		return req, nil
	})
}
