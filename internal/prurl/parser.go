// Package prurl parses GitHub pull request URLs into typed references.
package prurl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bkyoung/pr-guardian/internal/domain"
)

// InvalidURLError reports a URL that could not be parsed as a pull request
// reference. It carries the original input for diagnostics.
type InvalidURLError struct {
	Input  string
	Reason string
}

// Error implements the error interface.
func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid GitHub PR URL %q: %s", e.Input, e.Reason)
}

// Parse extracts a PullRequestRef from a GitHub pull request URL such as
// "https://github.com/owner/repo/pull/42". The input is trimmed of leading
// and trailing slashes and split on "/": the repository comes from the
// fourth- and third-from-last segments and the number from the last segment.
//
// Parse is pure: no side effects, no network access, deterministic.
func Parse(raw string) (domain.PullRequestRef, error) {
	trimmed := strings.Trim(raw, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 4 {
		return domain.PullRequestRef{}, &InvalidURLError{
			Input:  raw,
			Reason: fmt.Sprintf("expected at least 4 path segments, got %d", len(parts)),
		}
	}

	owner := parts[len(parts)-4]
	name := parts[len(parts)-3]
	if owner == "" || name == "" {
		return domain.PullRequestRef{}, &InvalidURLError{
			Input:  raw,
			Reason: "empty repository owner or name segment",
		}
	}

	last := parts[len(parts)-1]
	number, err := strconv.Atoi(last)
	if err != nil {
		return domain.PullRequestRef{}, &InvalidURLError{
			Input:  raw,
			Reason: fmt.Sprintf("trailing segment %q is not a number", last),
		}
	}
	if number <= 0 {
		return domain.PullRequestRef{}, &InvalidURLError{
			Input:  raw,
			Reason: fmt.Sprintf("pull request number must be positive, got %d", number),
		}
	}

	return domain.PullRequestRef{
		Repository: owner + "/" + name,
		Number:     number,
	}, nil
}
