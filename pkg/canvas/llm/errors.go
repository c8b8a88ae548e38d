package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredential indicates a completion was attempted without an
// API key. Detected before any request is issued.
var ErrMissingCredential = errors.New("api key is missing")

// Error wraps a provider failure with the operation that produced it
// and whether the failure is transient.
type Error struct {
	// Op is the operation that failed ("complete", "models").
	Op string
	// Err is the underlying error.
	Err error
	// Retryable is true for transient failures (rate limits, timeouts,
	// provider overload).
	Retryable bool
}

// NewError creates an Error for the given operation.
func NewError(op string, err error, retryable bool) *Error {
	return &Error{Op: op, Err: err, Retryable: retryable}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a transient provider failure.
func IsRetryable(err error) bool {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Retryable
	}
	return false
}

// isRetryableMessage checks if an error message indicates a transient error.
func isRetryableMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "overloaded") ||
		strings.Contains(lower, "503") ||
		strings.Contains(lower, "529")
}

// retryableStatus reports whether an HTTP status code is worth retrying.
func retryableStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504, 529:
		return true
	}
	return false
}
