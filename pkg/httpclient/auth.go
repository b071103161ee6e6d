package httpclient

import (
	"context"
	"fmt"
)

// HeaderAuthorization is the header carrying the API token.
const HeaderAuthorization = "Authorization"

// AuthTransport decorates a Transport by attaching a static Authorization
// header to every outbound request. Any caller-supplied Authorization value
// is replaced. It adds no other behavior.
type AuthTransport struct {
	inner Transport
	token string
}

// NewAuthTransport wraps inner so every request carries token.
func NewAuthTransport(inner Transport, token string) *AuthTransport {
	return &AuthTransport{inner: inner, token: token}
}

// Do sets the Authorization header on a copy of req and forwards it.
func (a *AuthTransport) Do(ctx context.Context, req *Request) (Response, error) {
	if a == nil || a.inner == nil {
		return nil, fmt.Errorf("auth transport is not initialized")
	}
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	return a.inner.Do(ctx, req.WithHeader(HeaderAuthorization, a.token))
}
