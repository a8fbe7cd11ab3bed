package fetcher

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error that occurred during a fetch operation
type ErrorType string

const (
	// ErrorTypeExit indicates the fetch process exited with a nonzero status
	ErrorTypeExit ErrorType = "exit"
	// ErrorTypeStart indicates the fetch process could not be started
	ErrorTypeStart ErrorType = "start"
	// ErrorTypeTimeout indicates the fetch did not finish in time
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeCanceled indicates the run was canceled before the fetch started
	ErrorTypeCanceled ErrorType = "canceled"
	// ErrorTypeNetwork indicates a network-level error (connection refused, DNS, etc.)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit indicates the request was rejected due to rate limiting (HTTP 429)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServer indicates a server error (HTTP 5xx)
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeClient indicates a client error (HTTP 4xx except 429)
	ErrorTypeClient ErrorType = "client"
	// ErrorTypeValidation indicates the response was received but data validation failed
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeUnknown indicates an error of unknown type
	ErrorTypeUnknown ErrorType = "unknown"
)

// FetchError represents a structured error from a fetch operation
type FetchError struct {
	Type       ErrorType
	ExitCode   int
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	switch {
	case e.Type == ErrorTypeExit && e.Message != "":
		return fmt.Sprintf("exit error (status %d): %s", e.ExitCode, e.Message)
	case e.Type == ErrorTypeExit:
		return fmt.Sprintf("exit error (status %d)", e.ExitCode)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewExitError creates an error for a process that exited nonzero.
// diagnostic is whatever the process wrote to its error stream.
func NewExitError(exitCode int, diagnostic string, cause error) *FetchError {
	return &FetchError{
		Type:     ErrorTypeExit,
		ExitCode: exitCode,
		Message:  diagnostic,
		Cause:    cause,
	}
}

// NewStartError creates an error for a process that could not be launched
func NewStartError(cause error) *FetchError {
	return &FetchError{
		Type:     ErrorTypeStart,
		ExitCode: -1,
		Message:  "failed to start fetch process",
		Cause:    cause,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(after time.Duration, cause error) *FetchError {
	return &FetchError{
		Type:     ErrorTypeTimeout,
		ExitCode: -1,
		Message:  fmt.Sprintf("fetch did not finish within %s", after),
		Cause:    cause,
	}
}

// NewCanceledError creates an error for a fetch that never started because
// its context ended first
func NewCanceledError(cause error) *FetchError {
	return &FetchError{
		Type:     ErrorTypeCanceled,
		ExitCode: -1,
		Message:  "fetch canceled before start",
		Cause:    cause,
	}
}

// NewNetworkError creates a network error
func NewNetworkError(cause error) *FetchError {
	return &FetchError{
		Type:    ErrorTypeNetwork,
		Message: "network request failed",
		Cause:   cause,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *FetchError {
	return &FetchError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// ClassifyHTTPError classifies an HTTP status code into an appropriate FetchError
func ClassifyHTTPError(statusCode int) *FetchError {
	switch {
	case statusCode == 429:
		return &FetchError{Type: ErrorTypeRateLimit, StatusCode: statusCode, Message: "rate limit exceeded"}
	case statusCode >= 500:
		return &FetchError{Type: ErrorTypeServer, StatusCode: statusCode, Message: "server returned an error"}
	case statusCode >= 400:
		return &FetchError{Type: ErrorTypeClient, StatusCode: statusCode, Message: fmt.Sprintf("client error: HTTP %d", statusCode)}
	default:
		return &FetchError{
			Type:       ErrorTypeUnknown,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		}
	}
}
