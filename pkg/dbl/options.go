package dbl

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/dblclient/pkg/async"
	"github.com/samvad-hq/dblclient/pkg/httpclient"
)

const (
	// DefaultBaseURL is the API root of the Discord Bot List service.
	DefaultBaseURL = "https://discordbots.org/api"
	// DefaultTimeout bounds each request when the default transport is used.
	DefaultTimeout = 10 * time.Second
)

type options struct {
	baseURL       string
	transport     httpclient.Transport
	restyClient   *resty.Client
	timeout       time.Duration
	log           async.Logger
	observer      async.Observer
	searchEncoder SearchEncoder
	baseCtx       context.Context
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithTransport replaces the underlying transport. The client still wraps
// it with the Authorization header decorator.
func WithTransport(t httpclient.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithRestyClient sends requests through c instead of a fresh resty client.
// WithTimeout does not apply to it, and WithTransport takes precedence.
func WithRestyClient(c *resty.Client) Option {
	return func(o *options) { o.restyClient = c }
}

// WithTimeout sets the per-request timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log async.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithObserver receives request lifecycle notifications (e.g. metrics).
func WithObserver(obs async.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithSearchEncoder overrides how GetBots renders search filters.
func WithSearchEncoder(enc SearchEncoder) Option {
	return func(o *options) {
		if enc != nil {
			o.searchEncoder = enc
		}
	}
}

// WithBaseContext sets the context all requests are dispatched under.
// Cancelling it fails requests that are still in flight.
func WithBaseContext(ctx context.Context) Option {
	return func(o *options) { o.baseCtx = ctx }
}
