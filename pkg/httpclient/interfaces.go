package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract. Implementations hold a body
// that has already been read in full; the underlying stream is closed.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Transport sends a built Request and returns its Response. Non-2xx replies
// are reported as *StatusError. Implementations must be safe for concurrent use.
type Transport interface {
	Do(ctx context.Context, req *Request) (Response, error)
}

// TransportFunc adapts a plain function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (Response, error)

// Do calls f(ctx, req).
func (f TransportFunc) Do(ctx context.Context, req *Request) (Response, error) {
	return f(ctx, req)
}
