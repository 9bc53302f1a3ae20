package ninjas

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrMissingAPIKey is returned by New when no API key is configured.
	// This is a fatal configuration error and is never retried.
	ErrMissingAPIKey = errors.New("calorieninjas api key is required")

	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during
	// a retry backoff.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of provider call failures.
type ErrorClass string

const (
	// ErrorClassQuota represents a provider-side 429 rate limit response.
	// Callers degrade gracefully instead of surfacing an error.
	ErrorClassQuota ErrorClass = "quota"

	// ErrorClassServer represents 5xx provider errors. Retryable.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassClient represents other 4xx responses and malformed 2xx
	// bodies. A schema violation from the provider is not something a
	// retry will fix.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassNetwork represents transport failures before a status
	// code was received.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError represents a provider call failure with its classification.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calorieninjas %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("calorieninjas %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Classify extracts the error class from an error chain.
// Returns "" when the error is not an APIError.
func Classify(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class
	}
	return ""
}

// IsQuotaExceeded reports whether err is a provider 429.
func IsQuotaExceeded(err error) bool {
	return Classify(err) == ErrorClassQuota
}

// shouldRetry determines if an error should be retried based on its
// classification. Only server errors are retried; a 429 must propagate
// immediately so the caller can degrade, and client/network failures will
// not improve on retry.
func shouldRetry(class ErrorClass) bool {
	return class == ErrorClassServer
}
