// Package httpclient defines the injectable HTTP transport the rest of
// this module consumes. Nothing in internal/ or the top-level packages
// constructs a net/http.Client directly; they take a Client interface
// instead, so callers can swap in retries, mocks, or mutual-TLS.
package httpclient

import (
	"context"
	"net/http"
)

// Response is the normalized shape every Client call returns.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client is the transport abstraction consumed by every flow in this
// module. Implementations must be safe for concurrent use if the same
// instance is shared across authentication contexts.
type Client interface {
	Get(ctx context.Context, url string, headers http.Header) (*Response, error)
	Post(ctx context.Context, url string, headers http.Header, body []byte) (*Response, error)
	Delete(ctx context.Context, url string, headers http.Header) (*Response, error)
}
