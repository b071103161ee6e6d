package httpclient

import (
	"context"
	"net/http"
	"sync"
	"testing"
)

type stubResponse struct {
	status int
	body   []byte
}

func (s stubResponse) Body() []byte        { return s.body }
func (s stubResponse) StatusCode() int     { return s.status }
func (s stubResponse) Header() http.Header { return http.Header{} }

type recordingTransport struct {
	mu   sync.Mutex
	seen []*Request
}

func (r *recordingTransport) Do(_ context.Context, req *Request) (Response, error) {
	r.mu.Lock()
	r.seen = append(r.seen, req)
	r.mu.Unlock()
	return stubResponse{status: http.StatusOK}, nil
}

func TestAuthTransportSetsHeaderOnEveryRequest(t *testing.T) {
	inner := &recordingTransport{}
	auth := NewAuthTransport(inner, "secret-token")
	b, _ := NewBuilder("https://example.com/api")

	get, _ := b.Get("a", []string{"bots", "1"}, nil)
	post, _ := b.PostJSON("b", []string{"bots", "1", "stats"}, map[string]int{"server_count": 1})

	for _, req := range []*Request{get, post} {
		if _, err := auth.Do(context.Background(), req); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}

	if len(inner.seen) != 2 {
		t.Fatalf("expected 2 forwarded requests, got %d", len(inner.seen))
	}
	for _, req := range inner.seen {
		if got := req.Header().Get(HeaderAuthorization); got != "secret-token" {
			t.Fatalf("Authorization = %q", got)
		}
	}
	if get.Header().Get(HeaderAuthorization) != "" {
		t.Fatalf("original request was mutated")
	}
}

func TestAuthTransportOverridesCallerHeader(t *testing.T) {
	inner := &recordingTransport{}
	auth := NewAuthTransport(inner, "real")
	b, _ := NewBuilder("https://example.com")
	req, _ := b.Get("a", []string{"x"}, nil)

	if _, err := auth.Do(context.Background(), req.WithHeader(HeaderAuthorization, "spoofed")); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := inner.seen[0].Header().Values(HeaderAuthorization); len(got) != 1 || got[0] != "real" {
		t.Fatalf("Authorization values = %v", got)
	}
}

func TestAuthTransportUninitialized(t *testing.T) {
	var auth *AuthTransport
	if _, err := auth.Do(context.Background(), nil); err == nil {
		t.Fatalf("expected error from nil auth transport")
	}
}
