// Package async dispatches built requests off the caller's goroutine and
// delivers their outcome through write-once Pending results.
package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// State is the lifecycle stage of a Pending result.
type State int32

const (
	StatePending State = iota
	StateResolved
	StateRejected
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ErrNilRejection replaces a nil error passed to Reject.
var ErrNilRejection = errors.New("rejected with nil error")

// Pending is a write-once container for the outcome of work in flight.
// Exactly one of Resolve or Reject takes effect; later calls return false
// and leave the stored outcome untouched. The zero value is not usable; use
// NewPending.
type Pending[T any] struct {
	claimed atomic.Bool
	state   atomic.Int32
	done    chan struct{}

	value T
	err   error

	mu        sync.Mutex
	callbacks []func(T, error)
	settled   bool
}

// NewPending returns an unresolved Pending.
func NewPending[T any]() *Pending[T] {
	return &Pending[T]{done: make(chan struct{})}
}

// Resolved returns a Pending already resolved with v.
func Resolved[T any](v T) *Pending[T] {
	p := NewPending[T]()
	p.Resolve(v)
	return p
}

// Rejected returns a Pending already rejected with err.
func Rejected[T any](err error) *Pending[T] {
	p := NewPending[T]()
	p.Reject(err)
	return p
}

// Resolve completes p with v. It reports whether this call won the single assignment.
func (p *Pending[T]) Resolve(v T) bool {
	return p.complete(v, nil, StateResolved)
}

// Reject completes p with err. It reports whether this call won the single assignment.
func (p *Pending[T]) Reject(err error) bool {
	if err == nil {
		err = ErrNilRejection
	}
	var zero T
	return p.complete(zero, err, StateRejected)
}

func (p *Pending[T]) complete(v T, err error, s State) bool {
	if !p.claimed.CompareAndSwap(false, true) {
		return false
	}
	p.value = v
	p.err = err
	p.state.Store(int32(s))
	close(p.done)

	p.mu.Lock()
	callbacks := p.callbacks
	p.callbacks = nil
	p.settled = true
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(v, err)
	}
	return true
}

// State returns the current lifecycle stage.
func (p *Pending[T]) State() State {
	return State(p.state.Load())
}

// Done is closed once p reaches a terminal state.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Get blocks until p is terminal and returns its outcome.
func (p *Pending[T]) Get() (T, error) {
	<-p.done
	return p.value, p.err
}

// Wait blocks until p is terminal or ctx is done. Giving up on the wait does
// not cancel the underlying work.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	if ctx == nil {
		return p.Get()
	}
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Err returns the rejection error, or nil while pending or when resolved.
func (p *Pending[T]) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Then registers fn to run with the outcome. fn runs on the goroutine that
// completes p, or immediately on the caller's goroutine when p is already
// terminal. fn must not block.
func (p *Pending[T]) Then(fn func(T, error)) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	if !p.settled {
		p.callbacks = append(p.callbacks, fn)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	fn(p.value, p.err)
}
