// Package errors provides error handling, categorization, and recovery strategies.
//
// The package implements a layered error handling approach:
//   - Categorization: Classify errors for appropriate handling
//   - Retry: Handle transient failures with exponential backoff
//   - Containment: Keep tool and model failures inside the turn
package errors

import (
	"errors"
	"fmt"
)

// Category represents how an error should be handled.
type Category int

const (
	// CategoryTransient indicates retry will likely help.
	// Examples: rate limits, timeouts, temporary network issues.
	CategoryTransient Category = iota

	// CategoryPermanent indicates retry won't help.
	// Examples: authentication failures, invalid configuration.
	CategoryPermanent

	// CategoryMalformed indicates the model produced output that could not
	// be parsed or validated. Examples: invalid JSON, schema violations.
	CategoryMalformed

	// CategoryHumanRequired indicates human intervention is needed.
	// Examples: ambiguous requests the graph cannot resolve on its own.
	CategoryHumanRequired
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTransient:
		return "transient"
	case CategoryPermanent:
		return "permanent"
	case CategoryMalformed:
		return "malformed"
	case CategoryHumanRequired:
		return "human_required"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with its category and context.
type CategorizedError struct {
	// Err is the underlying error.
	Err error

	// Category indicates how this error should be handled.
	Category Category

	// Retries is the number of attempts that have been made.
	Retries int

	// Context describes what operation was being attempted.
	Context string
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (category: %s, attempts: %d)",
			e.Context, e.Err, e.Category, e.Retries)
	}
	return fmt.Sprintf("%s (category: %s, attempts: %d)",
		e.Err, e.Category, e.Retries)
}

// Unwrap returns the underlying error.
func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// NewCategorized creates a new categorized error.
func NewCategorized(err error, category Category, context string) *CategorizedError {
	return &CategorizedError{
		Err:      err,
		Category: category,
		Context:  context,
	}
}

// Transient creates a transient error.
func Transient(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryTransient, context)
}

// Permanent creates a permanent error.
func Permanent(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryPermanent, context)
}

// Malformed creates a malformed-output error.
func Malformed(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryMalformed, context)
}

// HumanRequired creates a human-required error.
func HumanRequired(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryHumanRequired, context)
}

// Categorize determines how an error should be handled.
func Categorize(err error) Category {
	if err == nil {
		return CategoryPermanent // shouldn't happen, fail safe
	}

	// Check for already-categorized errors
	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Category
	}

	// Check for human intervention errors
	var humanErr *HumanInterventionError
	if errors.As(err, &humanErr) {
		return CategoryHumanRequired
	}

	// Check for HTTP errors
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case 429, 503, 504:
			return CategoryTransient
		case 401, 403:
			return CategoryPermanent
		case 400:
			return CategoryMalformed // bad request might be a prompt issue
		default:
			if httpErr.StatusCode >= 500 {
				return CategoryTransient // server errors are often transient
			}
			return CategoryPermanent
		}
	}

	// Check for JSON parse errors
	var jsonErr *JSONParseError
	if errors.As(err, &jsonErr) {
		return CategoryMalformed
	}

	// Check for validation errors
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return CategoryMalformed
	}

	// Check for timeout errors
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return CategoryTransient
	}

	// Unknown errors are permanent (fail safe)
	return CategoryPermanent
}

// IsRetryable reports whether the error should be retried.
func IsRetryable(err error) bool {
	cat := Categorize(err)
	return cat == CategoryTransient
}

// IsMalformed reports whether the error came from unparseable model output.
func IsMalformed(err error) bool {
	cat := Categorize(err)
	return cat == CategoryMalformed
}

// NeedsHuman reports whether human intervention is required.
func NeedsHuman(err error) bool {
	cat := Categorize(err)
	return cat == CategoryHumanRequired
}
