// Package gateway provides the two GitHub operations the review workflow
// needs: fetching a pull request's details with its diff, and posting an
// approved comment back.
package gateway

import (
	"context"
	"fmt"

	"github.com/bkyoung/pr-guardian/internal/adapter/github"
	"github.com/bkyoung/pr-guardian/internal/domain"
)

// Client defines the GitHub API surface the gateway depends on.
// This interface allows for mocking in tests.
type Client interface {
	GetPullRequest(ctx context.Context, ref domain.PullRequestRef) (*github.PullRequest, error)
	GetDiff(ctx context.Context, ref domain.PullRequestRef) (string, error)
	CreateIssueComment(ctx context.Context, ref domain.PullRequestRef, body string) (*github.IssueComment, error)
}

// Gateway wraps the GitHub client with the credential precondition and the
// fixed text format the agent consumes. Both operations make exactly one
// upstream attempt; posting twice creates two comments, so at-most-one post
// per approved draft is enforced by the session state machine, not here.
type Gateway struct {
	client        Client
	hasCredential bool
}

// New creates a Gateway. hasCredential reports whether a GitHub token is
// configured; without one every operation fails before any HTTP call.
func New(client Client, hasCredential bool) *Gateway {
	return &Gateway{client: client, hasCredential: hasCredential}
}

// FetchDetailsAndDiff retrieves the PR title, body, and unified diff and
// returns them as a single formatted text block:
//
//	Title: {title}
//	Body: {body}
//
//	Code Diff:
//	{diff}
func (g *Gateway) FetchDetailsAndDiff(ctx context.Context, ref domain.PullRequestRef) (string, error) {
	if !g.hasCredential {
		return "", &CredentialMissingError{Operation: "fetch pull request details"}
	}

	pr, err := g.client.GetPullRequest(ctx, ref)
	if err != nil {
		return "", wrapUpstream(err)
	}

	diff, err := g.client.GetDiff(ctx, ref)
	if err != nil {
		return "", wrapUpstream(err)
	}

	return fmt.Sprintf("Title: %s\nBody: %s\n\nCode Diff:\n%s", pr.Title, pr.Body, diff), nil
}

// PostComment posts body as an issue-style comment on the PR and reports
// whether the call succeeded.
func (g *Gateway) PostComment(ctx context.Context, ref domain.PullRequestRef, body string) (bool, error) {
	if !g.hasCredential {
		return false, &CredentialMissingError{Operation: "post comment"}
	}

	if _, err := g.client.CreateIssueComment(ctx, ref, body); err != nil {
		return false, wrapUpstream(err)
	}
	return true, nil
}
