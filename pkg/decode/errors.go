package decode

import (
	"errors"
	"fmt"
)

// ErrEmptyBody is reported when a value was expected but the body is empty.
var ErrEmptyBody = errors.New("empty response body")

// ErrNullBody is reported when a value was expected but the body is JSON null.
var ErrNullBody = errors.New("null response body")

// Error reports a response body that could not be turned into the target type.
type Error struct {
	Target string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// MissingFieldError reports a required field absent from the body. Index is
// the array element that lacks it, or -1 for a top-level object.
type MissingFieldError struct {
	Field string
	Index int
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("element %d: missing required field %q", e.Index, e.Field)
	}
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Wrap returns err as *Error for target, leaving existing *Error values untouched.
func Wrap(target string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Target: target, Err: err}
}
