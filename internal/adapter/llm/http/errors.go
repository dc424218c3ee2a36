// Package http provides shared infrastructure for HTTP-backed API clients:
// typed errors, structured request/response logging with credential
// redaction, and in-memory metrics. Both the LLM client and the GitHub
// client build on it.
package http

import "fmt"

// ErrorType represents the category of error that occurred.
type ErrorType int

const (
	ErrTypeAuthentication ErrorType = iota
	ErrTypeRateLimit
	ErrTypeServiceUnavailable
	ErrTypeInvalidRequest
	ErrTypeNotFound
	ErrTypeTimeout
	ErrTypeContentFiltered
	ErrTypeUnknown
)

// String returns a human-readable description of the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrTypeAuthentication:
		return "authentication error"
	case ErrTypeRateLimit:
		return "rate limit exceeded"
	case ErrTypeServiceUnavailable:
		return "service unavailable"
	case ErrTypeInvalidRequest:
		return "invalid request"
	case ErrTypeNotFound:
		return "not found"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeContentFiltered:
		return "content filtered"
	default:
		return "unknown error"
	}
}

// Error represents an upstream API error with additional context. Calls are
// made exactly once per workflow stage, so the error carries no retry hints.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Provider   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s (status: %d)", e.Provider, e.Type.String(), e.Message, e.StatusCode)
}

// Is implements error equality checking for errors.Is. Two Errors match when
// their types match, regardless of message or provider.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewTimeoutError creates an error for a request that never produced a
// response (network failure or timeout).
func NewTimeoutError(provider, message string) *Error {
	return &Error{
		Type:     ErrTypeTimeout,
		Message:  message,
		Provider: provider,
	}
}

// NewInvalidRequestError creates an error for a request the upstream
// rejected as malformed.
func NewInvalidRequestError(provider, message string) *Error {
	return &Error{
		Type:       ErrTypeInvalidRequest,
		Message:    message,
		StatusCode: 400,
		Provider:   provider,
	}
}

// NewUnknownError creates an error for an unexpected failure.
func NewUnknownError(provider, message string) *Error {
	return &Error{
		Type:     ErrTypeUnknown,
		Message:  message,
		Provider: provider,
	}
}
