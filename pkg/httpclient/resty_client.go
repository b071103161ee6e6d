package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyTransport adapts resty.Client to the Transport interface. The resty
// client owns the connection pool; RestyTransport adds no retry policy.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport creates a RestyTransport with the specified timeout.
func NewRestyTransport(timeout time.Duration) *RestyTransport {
	return &RestyTransport{client: newRestyBaseClient(timeout)}
}

// NewRestyTransportFromClient wraps an existing resty client, keeping its
// timeout, headers and proxy settings.
func NewRestyTransportFromClient(c *resty.Client) *RestyTransport {
	if c == nil {
		c = resty.New()
	}
	return &RestyTransport{client: c}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	c.SetRetryCount(0)
	return c
}

// Do executes req. Transport failures are returned unwrapped; responses with
// a status of 400 or above are returned as *StatusError.
func (r *RestyTransport) Do(ctx context.Context, req *Request) (Response, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rr := r.client.R().SetContext(ctx)
	for key, values := range req.Header() {
		for _, v := range values {
			rr.Header.Add(key, v)
		}
	}
	if body := req.Body(); body != nil {
		rr.SetBody(body)
		rr.SetHeader("Content-Type", req.ContentType())
	}

	resp, err := rr.Execute(req.Method(), req.URL().String())
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, NewStatusError(resp.StatusCode(), resp.Body())
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
