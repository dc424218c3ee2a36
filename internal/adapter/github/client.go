// Package github implements an HTTP client for the GitHub REST API,
// covering the two operations the review gateway needs: reading a pull
// request with its unified diff and posting an issue-style comment.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	llmhttp "github.com/bkyoung/pr-guardian/internal/adapter/llm/http"
	"github.com/bkyoung/pr-guardian/internal/domain"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second

	acceptJSON  = "application/vnd.github+json"
	acceptPatch = "application/vnd.github.patch"
	apiVersion  = "2022-11-28"
)

// Client is an HTTP client for the GitHub REST API. Each operation makes
// exactly one request; there is no retry layer.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new GitHub API client with the given token.
// The token should be a personal access token with repo scope.
func NewClient(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetBaseURL sets a custom base URL (for testing and GitHub Enterprise).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// GetPullRequest fetches pull request metadata (title, body, URLs).
func (c *Client) GetPullRequest(ctx context.Context, ref domain.PullRequestRef) (*PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/pulls/%d", c.baseURL, ref.Repository, ref.Number)

	body, _, err := c.do(ctx, http.MethodGet, url, acceptJSON, nil)
	if err != nil {
		return nil, err
	}

	var pr PullRequest
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("failed to parse pull request: %w", err)
	}
	return &pr, nil
}

// GetDiff fetches the unified diff for a pull request using the patch media
// type, authenticated with the same bearer token.
func (c *Client) GetDiff(ctx context.Context, ref domain.PullRequestRef) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/pulls/%d", c.baseURL, ref.Repository, ref.Number)

	body, _, err := c.do(ctx, http.MethodGet, url, acceptPatch, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// CreateIssueComment posts body as an issue-style comment on the pull
// request. Posting is not idempotent: calling twice creates two comments.
func (c *Client) CreateIssueComment(ctx context.Context, ref domain.PullRequestRef, commentBody string) (*IssueComment, error) {
	url := fmt.Sprintf("%s/repos/%s/issues/%d/comments", c.baseURL, ref.Repository, ref.Number)

	reqBody, err := json.Marshal(createCommentRequest{Body: commentBody})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal comment: %w", err)
	}

	body, _, err := c.do(ctx, http.MethodPost, url, acceptJSON, reqBody)
	if err != nil {
		return nil, err
	}

	var comment IssueComment
	if err := json.Unmarshal(body, &comment); err != nil {
		return nil, fmt.Errorf("failed to parse comment response: %w", err)
	}
	return &comment, nil
}

// do executes a single request and returns the response body. Error status
// codes are mapped to typed llmhttp errors.
func (c *Client) do(ctx context.Context, method, url, accept string, reqBody []byte) ([]byte, int, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		bodyReader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, 0, llmhttp.NewUnknownError(providerName, err.Error())
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, llmhttp.NewTimeoutError(providerName, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, llmhttp.NewUnknownError(providerName,
			fmt.Sprintf("HTTP %d (failed to read response: %v)", resp.StatusCode, err))
	}

	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, MapHTTPError(resp.StatusCode, body)
	}

	return body, resp.StatusCode, nil
}
