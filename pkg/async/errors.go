package async

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned synchronously by Execute for unusable inputs.
var ErrInvalidRequest = errors.New("invalid request")

// TransportError reports a failure below the application layer: connection,
// timeout, TLS, I/O, or an HTTP status the transport treats as failure.
type TransportError struct {
	Op     string
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
