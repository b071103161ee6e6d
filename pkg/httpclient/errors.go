package httpclient

import (
	"errors"
	"fmt"
	"strings"
)

const maxSnippetBytes = 512

// StatusError reports a response whose status code signals failure (>= 400).
type StatusError struct {
	StatusCode int
	Snippet    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("http response status %d", e.StatusCode)
	}
	return fmt.Sprintf("http response status %d: %s", e.StatusCode, e.Snippet)
}

// NewStatusError builds a StatusError carrying a trimmed snippet of body.
func NewStatusError(code int, body []byte) *StatusError {
	return &StatusError{StatusCode: code, Snippet: readBodySnippet(body)}
}

// IsStatus reports whether err carries a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == code
	}
	return false
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxSnippetBytes {
		body = body[:maxSnippetBytes]
	}
	return strings.TrimSpace(string(body))
}
