// Package errors provides domain-specific error types for dnsblockd.
//
// Errors carry a code so callers can branch on the failure class without
// string matching: a source that failed to download is recoverable, an empty
// rule index at startup is not.
package errors

import "fmt"

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeConfig indicates a configuration load or parse error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeValidation indicates a configuration validation error.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeSource indicates a filter source that could not be fetched or read.
	ErrCodeSource ErrorCode = "SOURCE_UNAVAILABLE"

	// ErrCodeEmptyIndex indicates a compilation that produced no usable rules.
	ErrCodeEmptyIndex ErrorCode = "EMPTY_INDEX"

	// ErrCodeResolution indicates an upstream resolver failure for a
	// forwarded query.
	ErrCodeResolution ErrorCode = "RESOLUTION_FAILURE"

	// ErrCodeRefresh indicates a failed background recompilation. The
	// previous snapshot stays live.
	ErrCodeRefresh ErrorCode = "REFRESH_FAILURE"

	// ErrCodeNetwork indicates a network configuration error (iptables, links).
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code, so sentinel values like ErrEmptyIndex compare
// against any error carrying the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return Wrap(ErrCodeValidation, message, cause)
}

// NewSourceError creates a new filter source error.
func NewSourceError(message string, cause error) *Error {
	return Wrap(ErrCodeSource, message, cause)
}

// NewResolutionError creates a new upstream resolution error.
func NewResolutionError(message string, cause error) *Error {
	return Wrap(ErrCodeResolution, message, cause)
}

// NewRefreshError creates a new background refresh error.
func NewRefreshError(message string, cause error) *Error {
	return Wrap(ErrCodeRefresh, message, cause)
}

// NewNetworkError creates a new network configuration error.
func NewNetworkError(message string, cause error) *Error {
	return Wrap(ErrCodeNetwork, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}
