package gateway

import (
	"errors"
	"fmt"

	llmhttp "github.com/bkyoung/pr-guardian/internal/adapter/llm/http"
)

// CredentialMissingError reports that no GitHub token is configured. It is a
// precondition failure: no HTTP call has been made.
type CredentialMissingError struct {
	Operation string
}

// Error implements the error interface.
func (e *CredentialMissingError) Error() string {
	return fmt.Sprintf("GitHub token not configured, cannot %s", e.Operation)
}

// UpstreamError reports a GitHub-side failure. The gateway does not
// distinguish repo-not-found from rate limiting or network failure beyond
// carrying the upstream status and message.
type UpstreamError struct {
	Status  int
	Message string
	cause   error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("GitHub request failed: %s", e.Message)
	}
	return fmt.Sprintf("GitHub request failed (status %d): %s", e.Status, e.Message)
}

// Unwrap exposes the underlying client error.
func (e *UpstreamError) Unwrap() error {
	return e.cause
}

// wrapUpstream converts any client error into an UpstreamError, preserving
// the typed status and message when available.
func wrapUpstream(err error) *UpstreamError {
	var httpErr *llmhttp.Error
	if errors.As(err, &httpErr) {
		return &UpstreamError{
			Status:  httpErr.StatusCode,
			Message: httpErr.Message,
			cause:   err,
		}
	}
	return &UpstreamError{Message: err.Error(), cause: err}
}
