// Package errors defines error types shared across the catalog adapters.
package errors

import stdErrors "errors"

// RateLimitError represents a rate limit response from a catalog site.
// The query cascade stops on it instead of hammering the site with the
// remaining variants.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// NewRateLimitError creates a new RateLimitError with the given message
func NewRateLimitError(message string) *RateLimitError {
	return &RateLimitError{Message: message}
}

// IsRateLimitError checks if the given error is a RateLimitError
func IsRateLimitError(err error) bool {
	var rateLimitErr *RateLimitError
	return stdErrors.As(err, &rateLimitErr)
}
