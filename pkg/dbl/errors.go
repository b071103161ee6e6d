package dbl

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidID is returned when an id is not a decimal snowflake.
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidArgument is returned for out-of-range call arguments.
	ErrInvalidArgument = errors.New("invalid argument")
)

// maxSearchLimit is the largest page size the search endpoint serves.
const maxSearchLimit = 500

// ValidateID checks that id is a decimal snowflake; kind names the id in the error.
func ValidateID(kind, id string) error {
	return validateID(kind, id)
}

func validateID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s id is empty", ErrInvalidID, kind)
	}
	if len(id) > 20 {
		return fmt.Errorf("%w: %s id %q is too long", ErrInvalidID, kind, id)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: %s id %q must be numeric", ErrInvalidID, kind, id)
		}
	}
	return nil
}

func validateCount(name string, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %s must not be negative (got %d)", ErrInvalidArgument, name, n)
	}
	return nil
}
