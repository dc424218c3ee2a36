package github

import (
	"encoding/json"
	"fmt"
	"net/http"

	llmhttp "github.com/bkyoung/pr-guardian/internal/adapter/llm/http"
)

const providerName = "github"

// MapHTTPError maps GitHub API HTTP status codes to typed llmhttp.Error.
// This keeps error handling consistent with the LLM client.
func MapHTTPError(statusCode int, body []byte) *llmhttp.Error {
	message := parseErrorMessage(statusCode, body)

	var errType llmhttp.ErrorType
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		errType = llmhttp.ErrTypeAuthentication

	case http.StatusTooManyRequests:
		errType = llmhttp.ErrTypeRateLimit

	case http.StatusNotFound:
		// Repo not found, PR not found, or token lacks access.
		errType = llmhttp.ErrTypeNotFound

	case http.StatusUnprocessableEntity:
		errType = llmhttp.ErrTypeInvalidRequest

	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable:
		errType = llmhttp.ErrTypeServiceUnavailable

	default:
		errType = llmhttp.ErrTypeUnknown
	}

	return &llmhttp.Error{
		Type:       errType,
		Message:    message,
		StatusCode: statusCode,
		Provider:   providerName,
	}
}

// parseErrorMessage extracts a user-friendly error message from GitHub's response.
func parseErrorMessage(statusCode int, body []byte) string {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Message == "" {
		bodyPreview := string(body)
		if len(bodyPreview) > 100 {
			bodyPreview = bodyPreview[:100] + "..."
		}
		if bodyPreview == "" {
			return fmt.Sprintf("HTTP %d", statusCode)
		}
		return fmt.Sprintf("HTTP %d: %s", statusCode, bodyPreview)
	}
	return errResp.Message
}
