// Package gemini implements an HTTP client for Google's Gemini
// generateContent API. It is the LLM transport behind the agent executor.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	llmhttp "github.com/bkyoung/pr-guardian/internal/adapter/llm/http"
)

const (
	providerName   = "gemini"
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultTimeout = 60 * time.Second
)

// HTTPClient is an HTTP client for the Google Gemini API. Each Call makes
// exactly one request; there is no retry layer.
type HTTPClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client

	// Observability components
	logger  llmhttp.Logger
	metrics llmhttp.Metrics
}

// NewHTTPClient creates a new Gemini HTTP client. A zero timeout falls back
// to the default.
func NewHTTPClient(apiKey, model string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = url
}

// SetLogger sets the logger for this client.
func (c *HTTPClient) SetLogger(logger llmhttp.Logger) {
	c.logger = logger
}

// SetMetrics sets the metrics tracker for this client.
func (c *HTTPClient) SetMetrics(metrics llmhttp.Metrics) {
	c.metrics = metrics
}

// APIResponse represents the parsed response from the API.
type APIResponse struct {
	Text         string
	TokensIn     int
	TokensOut    int
	FinishReason string
}

// Generate sends a system prompt and user prompt to the generateContent API
// and returns the model's text response.
func (c *HTTPClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (*APIResponse, error) {
	startTime := time.Now()

	if c.logger != nil {
		c.logger.LogRequest(ctx, llmhttp.RequestLog{
			Provider:    providerName,
			Model:       c.model,
			Timestamp:   startTime,
			PromptChars: len(systemPrompt) + len(userPrompt),
			APIKey:      c.apiKey,
		})
	}
	if c.metrics != nil {
		c.metrics.RecordRequest(providerName, c.model)
	}

	reqBody := GenerateContentRequest{
		Contents: []Content{
			{
				Role:  "user",
				Parts: []Part{{Text: userPrompt}},
			},
		},
		GenerationConfig: &GenerationConfig{
			CandidateCount: 1,
		},
		SafetySettings: []SafetySetting{
			{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_ONLY_HIGH"},
			{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_ONLY_HIGH"},
			{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_ONLY_HIGH"},
			{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_ONLY_HIGH"},
		},
	}
	if systemPrompt != "" {
		reqBody.SystemInstruction = &Content{
			Parts: []Part{{Text: systemPrompt}},
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, llmhttp.NewUnknownError(providerName, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		callErr := llmhttp.NewTimeoutError(providerName, llmhttp.RedactURLSecrets(err.Error()))
		c.observeError(ctx, callErr, time.Since(startTime))
		return nil, callErr
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	duration := time.Since(startTime)

	if resp.StatusCode >= 400 {
		apiErr := c.mapErrorResponse(resp.StatusCode, bodyBytes)
		c.observeError(ctx, apiErr, duration)
		return nil, apiErr
	}

	var genResp GenerateContentResponse
	if err := json.Unmarshal(bodyBytes, &genResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(genResp.Candidates) == 0 {
		return nil, llmhttp.NewUnknownError(providerName, "no candidates in response")
	}

	candidate := genResp.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return nil, &llmhttp.Error{
			Type:     llmhttp.ErrTypeContentFiltered,
			Message:  "content blocked by safety filters",
			Provider: providerName,
		}
	}

	var textParts []string
	for _, part := range candidate.Content.Parts {
		textParts = append(textParts, part.Text)
	}

	response := &APIResponse{
		Text:         strings.Join(textParts, ""),
		TokensIn:     genResp.UsageMetadata.PromptTokenCount,
		TokensOut:    genResp.UsageMetadata.CandidatesTokenCount,
		FinishReason: candidate.FinishReason,
	}

	if c.logger != nil {
		c.logger.LogResponse(ctx, llmhttp.ResponseLog{
			Provider:     providerName,
			Model:        c.model,
			Timestamp:    time.Now(),
			Duration:     duration,
			TokensIn:     response.TokensIn,
			TokensOut:    response.TokensOut,
			StatusCode:   resp.StatusCode,
			FinishReason: response.FinishReason,
		})
	}
	if c.metrics != nil {
		c.metrics.RecordDuration(providerName, c.model, duration)
		c.metrics.RecordTokens(providerName, c.model, response.TokensIn, response.TokensOut)
	}

	return response, nil
}

// mapErrorResponse maps HTTP status codes to typed errors.
func (c *HTTPClient) mapErrorResponse(statusCode int, body []byte) *llmhttp.Error {
	message := fmt.Sprintf("HTTP %d", statusCode)

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	var errType llmhttp.ErrorType
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		errType = llmhttp.ErrTypeAuthentication
	case http.StatusTooManyRequests:
		errType = llmhttp.ErrTypeRateLimit
	case http.StatusBadRequest:
		errType = llmhttp.ErrTypeInvalidRequest
	case http.StatusNotFound:
		errType = llmhttp.ErrTypeNotFound
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		errType = llmhttp.ErrTypeServiceUnavailable
	default:
		errType = llmhttp.ErrTypeUnknown
	}

	return &llmhttp.Error{
		Type:       errType,
		Message:    llmhttp.RedactURLSecrets(message),
		StatusCode: statusCode,
		Provider:   providerName,
	}
}

func (c *HTTPClient) observeError(ctx context.Context, err error, duration time.Duration) {
	var httpErr *llmhttp.Error
	if !errors.As(err, &httpErr) {
		return
	}
	if c.logger != nil {
		c.logger.LogError(ctx, llmhttp.ErrorLog{
			Provider:   providerName,
			Model:      c.model,
			Timestamp:  time.Now(),
			Duration:   duration,
			Error:      err,
			ErrorType:  httpErr.Type,
			StatusCode: httpErr.StatusCode,
		})
	}
	if c.metrics != nil {
		c.metrics.RecordError(providerName, c.model, httpErr.Type)
	}
}
