package async

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/dblclient/pkg/decode"
	"github.com/samvad-hq/dblclient/pkg/httpclient"
)

// Request outcomes reported to an Observer.
const (
	OutcomeOK             = "ok"
	OutcomeTransportError = "transport_error"
	OutcomeDecodeError    = "decode_error"
)

// Observer receives request lifecycle notifications. Calls happen on the
// executor goroutine and must not block.
type Observer interface {
	RequestStarted(op string)
	RequestFinished(op, outcome string, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) RequestStarted(string)                       {}
func (noopObserver) RequestFinished(string, string, time.Duration) {}

// Executor submits requests to a Transport and resolves Pending results from
// the transport's completion. It holds no per-call state and is safe for
// concurrent use.
type Executor struct {
	transport httpclient.Transport
	baseCtx   context.Context
	log       Logger
	observer  Observer
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the executor logger.
func WithLogger(log Logger) Option {
	return func(e *Executor) { e.log = ensureLogger(log) }
}

// WithObserver sets the request observer.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithBaseContext sets the context every dispatched request runs under.
func WithBaseContext(ctx context.Context) Option {
	return func(e *Executor) {
		if ctx != nil {
			e.baseCtx = ctx
		}
	}
}

// NewExecutor builds an Executor on top of transport.
func NewExecutor(transport httpclient.Transport, opts ...Option) (*Executor, error) {
	if transport == nil {
		return nil, fmt.Errorf("executor transport must not be nil")
	}
	e := &Executor{
		transport: transport,
		baseCtx:   context.Background(),
		log:       discard{},
		observer:  noopObserver{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Execute dispatches req on a new goroutine and returns immediately. The
// returned Pending is resolved with the decoded value, or rejected with a
// *TransportError (decoder not invoked) or a *decode.Error. Invalid inputs
// are reported synchronously and nothing is dispatched.
func Execute[T any](e *Executor, req *httpclient.Request, dec decode.Decoder[T]) (*Pending[T], error) {
	if e == nil || e.transport == nil {
		return nil, fmt.Errorf("%w: executor is not initialized", ErrInvalidRequest)
	}
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	if dec == nil {
		return nil, fmt.Errorf("%w: nil decoder for %s", ErrInvalidRequest, req.Operation())
	}

	p := NewPending[T]()
	go run(e, req, dec, p)
	return p, nil
}

func run[T any](e *Executor, req *httpclient.Request, dec decode.Decoder[T], p *Pending[T]) {
	op := req.Operation()
	start := time.Now()
	e.observer.RequestStarted(op)

	resp, err := e.send(req)
	if err != nil {
		p.Reject(&TransportError{
			Op:     op,
			Method: req.Method(),
			URL:    req.URL().Redacted(),
			Err:    err,
		})
		e.finish(req, OutcomeTransportError, start, err)
		return
	}

	v, err := decodeSafely(dec, resp)
	if err != nil {
		p.Reject(err)
		e.finish(req, OutcomeDecodeError, start, err)
		return
	}
	p.Resolve(v)
	e.finish(req, OutcomeOK, start, nil)
}

// send calls the transport, converting a panic into an error so the
// Pending is still rejected.
func (e *Executor) send(req *httpclient.Request) (resp httpclient.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("transport panic: %v", r)
		}
	}()
	resp, err = e.transport.Do(e.baseCtx, req)
	if err == nil && resp == nil {
		err = errors.New("transport returned no response")
	}
	return resp, err
}

func decodeSafely[T any](dec decode.Decoder[T], resp httpclient.Response) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, &decode.Error{Target: fmt.Sprintf("%T", zero), Err: fmt.Errorf("decoder panic: %v", r)}
		}
	}()
	v, err = dec.Decode(resp)
	if err != nil {
		var zero T
		return zero, decode.Wrap(fmt.Sprintf("%T", zero), err)
	}
	return v, nil
}

func (e *Executor) finish(req *httpclient.Request, outcome string, start time.Time, err error) {
	elapsed := time.Since(start)
	e.observer.RequestFinished(req.Operation(), outcome, elapsed)

	meta := map[string]any{
		"operation":  req.Operation(),
		"method":     req.Method(),
		"outcome":    outcome,
		"elapsed_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		meta["error"] = err.Error()
		e.log.WarnObj("request failed", "request_meta", meta)
		return
	}
	e.log.DebugObj("request completed", "request_meta", meta)
}
