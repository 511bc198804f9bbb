package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Error wraps provider failures with the operation and retryability.
type Error struct {
	// Op is the operation that failed ("complete").
	Op string
	// Err is the underlying error.
	Err error
	// Retryable is true for transient failures (rate limits, timeouts).
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a provider error.
func NewError(op string, err error, retryable bool) *Error {
	return &Error{Op: op, Err: err, Retryable: retryable}
}

// IsRetryable reports whether the error is a transient provider failure.
func IsRetryable(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return false
}

// isTransientMessage checks if an error message indicates a transient failure.
func isTransientMessage(msg string) bool {
	msgLower := strings.ToLower(msg)

	// Network-level issues
	if strings.Contains(msgLower, "context deadline exceeded") ||
		strings.Contains(msgLower, "connection refused") ||
		strings.Contains(msgLower, "timeout") {
		return true
	}

	// Server-side temporary failures
	return strings.Contains(msgLower, "rate limit") ||
		strings.Contains(msgLower, "overloaded") ||
		strings.Contains(msgLower, "429") ||
		strings.Contains(msgLower, "500 internal") ||
		strings.Contains(msgLower, "502 bad gateway") ||
		strings.Contains(msgLower, "503 service unavailable") ||
		strings.Contains(msgLower, "529")
}
