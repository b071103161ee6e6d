// Package decode turns transport responses into typed values.
//
// A Decoder is selected per call: JSON decodes into a named Go type (or
// ignores the body when the type is NoContent), Func wraps an ad hoc
// extraction closure. Every failure is reported as *Error.
package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/samvad-hq/dblclient/pkg/httpclient"
)

// Decoder converts a response into a T. It must not retain resp after returning.
type Decoder[T any] interface {
	Decode(resp httpclient.Response) (T, error)
}

// Func adapts a closure to the Decoder interface. Errors that are not
// already *Error are wrapped.
type Func[T any] func(resp httpclient.Response) (T, error)

// Decode calls f and normalizes its error.
func (f Func[T]) Decode(resp httpclient.Response) (T, error) {
	v, err := f(resp)
	if err != nil {
		var zero T
		return zero, Wrap(typeName[T](), err)
	}
	return v, nil
}

// NoContent is the result type for calls whose response body carries no value.
type NoContent struct{}

// Option customizes a JSON decoder.
type Option func(*jsonOptions)

type jsonOptions struct {
	required []string
	each     []string
}

// Require lists top-level object keys that must be present in the body.
func Require(keys ...string) Option {
	return func(o *jsonOptions) {
		o.required = append(o.required, keys...)
	}
}

// RequireEach lists keys every element of a top-level array must carry.
func RequireEach(keys ...string) Option {
	return func(o *jsonOptions) {
		o.each = append(o.each, keys...)
	}
}

type jsonDecoder[T any] struct {
	target   string
	required []string
	each     []string
}

// JSON returns a Decoder that unmarshals the body into T.
func JSON[T any](opts ...Option) Decoder[T] {
	var o jsonOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return jsonDecoder[T]{target: typeName[T](), required: o.required, each: o.each}
}

func (d jsonDecoder[T]) Decode(resp httpclient.Response) (T, error) {
	var out T
	if _, ok := any(out).(NoContent); ok {
		return out, nil
	}
	if resp == nil {
		return out, &Error{Target: d.target, Err: errors.New("nil response")}
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return out, &Error{Target: d.target, Err: ErrEmptyBody}
	}
	if bytes.Equal(body, jsonNull) {
		return out, &Error{Target: d.target, Err: ErrNullBody}
	}

	if len(d.required) > 0 {
		if err := checkRequired(body, d.required); err != nil {
			return out, &Error{Target: d.target, Err: err}
		}
	}
	if len(d.each) > 0 {
		if err := checkEach(body, d.each); err != nil {
			return out, &Error{Target: d.target, Err: err}
		}
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, &Error{Target: d.target, Err: err}
	}
	return out, nil
}

var jsonNull = []byte("null")

func checkRequired(body []byte, keys []string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return fmt.Errorf("expected json object: %w", err)
	}
	return missingKey(fields, keys, -1)
}

func checkEach(body []byte, keys []string) error {
	var elems []map[string]json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		return fmt.Errorf("expected json array of objects: %w", err)
	}
	for i, fields := range elems {
		if err := missingKey(fields, keys, i); err != nil {
			return err
		}
	}
	return nil
}

func missingKey(fields map[string]json.RawMessage, keys []string, index int) error {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
			return &MissingFieldError{Field: key, Index: index}
		}
	}
	return nil
}

// Bool returns a Decoder reading a flag field from a JSON object. Numbers
// are true when equal to 1, booleans are taken as-is. A missing field fails.
func Bool(field string) Decoder[bool] {
	return Func[bool](func(resp httpclient.Response) (bool, error) {
		if resp == nil {
			return false, errors.New("nil response")
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(resp.Body(), &fields); err != nil {
			return false, err
		}
		raw, ok := fields[field]
		if !ok {
			return false, &MissingFieldError{Field: field, Index: -1}
		}

		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			i, err := n.Int64()
			if err != nil {
				return false, fmt.Errorf("field %q: %w", field, err)
			}
			return i == 1, nil
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return false, fmt.Errorf("field %q is neither a number nor a boolean", field)
		}
		return b, nil
	})
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return t.String()
}
