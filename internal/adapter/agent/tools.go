// Package agent implements the agent executor: a blocking LLM-driven tool
// loop that turns a natural-language task into tool invocations against the
// GitHub gateway and a final textual output.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bkyoung/pr-guardian/internal/domain"
)

// MaxToolOutputLength is the maximum length of tool output before truncation.
// Large diffs would otherwise blow up the prompt on the next iteration.
const MaxToolOutputLength = 50000

// Gateway is the GitHub operation surface exposed to the agent as tools.
// Implemented by the gateway use case.
type Gateway interface {
	FetchDetailsAndDiff(ctx context.Context, ref domain.PullRequestRef) (string, error)
	PostComment(ctx context.Context, ref domain.PullRequestRef, body string) (bool, error)
}

// Tool defines the interface for agent tools.
type Tool interface {
	// Name returns the tool identifier used in prompts and logs.
	Name() string

	// Description returns a human-readable description for the agent prompt.
	Description() string

	// Execute runs the tool with the given input and returns the result.
	Execute(ctx context.Context, input string) (string, error)
}

// NewToolRegistry creates the two gateway tools.
func NewToolRegistry(gw Gateway) []Tool {
	return []Tool{
		NewFetchTool(gw),
		NewPostCommentTool(gw),
	}
}

// toolInput is the JSON input schema shared by both gateway tools.
type toolInput struct {
	Repository  string `json:"repository"`
	Number      int    `json:"number"`
	CommentBody string `json:"comment_body,omitempty"`
}

func parseToolInput(raw string) (toolInput, error) {
	var in toolInput
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &in); err != nil {
		return toolInput{}, fmt.Errorf("input must be a JSON object: %w", err)
	}
	if in.Repository == "" || in.Number <= 0 {
		return toolInput{}, fmt.Errorf("input requires \"repository\" and a positive \"number\"")
	}
	return in, nil
}

func (in toolInput) ref() domain.PullRequestRef {
	return domain.PullRequestRef{Repository: in.Repository, Number: in.Number}
}

// FetchTool retrieves a pull request's title, body, and diff.
type FetchTool struct {
	gw Gateway
}

// NewFetchTool creates a new fetch tool.
func NewFetchTool(gw Gateway) *FetchTool {
	return &FetchTool{gw: gw}
}

// Name returns the tool name.
func (t *FetchTool) Name() string {
	return "get_pr_details_and_diff"
}

// Description returns the tool description.
func (t *FetchTool) Description() string {
	return `Get the title, body, and code diff for a GitHub pull request. Use this as the first step to get the context of the changes. Input: {"repository": "owner/name", "number": 42}`
}

// Execute fetches the PR details and diff. Gateway failures are returned as
// plain descriptive strings so the agent can report them in its output.
func (t *FetchTool) Execute(ctx context.Context, input string) (string, error) {
	in, err := parseToolInput(input)
	if err != nil {
		return "", err
	}

	details, err := t.gw.FetchDetailsAndDiff(ctx, in.ref())
	if err != nil {
		return fmt.Sprintf("Error fetching PR details: %v", err), nil
	}
	return truncateOutput(details), nil
}

// PostCommentTool posts a comment to a pull request. It must only be invoked
// for drafts that a human has already approved; the session state machine
// guarantees the posting task is built only after approval.
type PostCommentTool struct {
	gw Gateway
}

// NewPostCommentTool creates a new post tool.
func NewPostCommentTool(gw Gateway) *PostCommentTool {
	return &PostCommentTool{gw: gw}
}

// Name returns the tool name.
func (t *PostCommentTool) Name() string {
	return "post_comment_to_pr"
}

// Description returns the tool description.
func (t *PostCommentTool) Description() string {
	return `Post a comment to a GitHub pull request. IMPORTANT: only call this tool with a comment body the user has explicitly approved. Input: {"repository": "owner/name", "number": 42, "comment_body": "markdown text"}`
}

// Execute posts the comment.
func (t *PostCommentTool) Execute(ctx context.Context, input string) (string, error) {
	in, err := parseToolInput(input)
	if err != nil {
		return "", err
	}
	if in.CommentBody == "" {
		return "", fmt.Errorf("input requires a non-empty \"comment_body\"")
	}

	if _, err := t.gw.PostComment(ctx, in.ref(), in.CommentBody); err != nil {
		return fmt.Sprintf("Error posting comment: %v", err), nil
	}
	return "Comment posted successfully.", nil
}

// truncateOutput caps tool output at MaxToolOutputLength.
func truncateOutput(output string) string {
	if len(output) <= MaxToolOutputLength {
		return output
	}
	return output[:MaxToolOutputLength] + "\n... [output truncated]"
}
