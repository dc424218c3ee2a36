package domain

import (
	"fmt"
	"strings"
)

// PullRequestRef identifies a pull request by its repository and number.
// It is immutable once parsed from a URL.
type PullRequestRef struct {
	// Repository is the "owner/name" form, e.g. "acme/widgets".
	Repository string

	// Number is the pull request number, always positive.
	Number int
}

// IsZero reports whether the ref has not been set.
func (r PullRequestRef) IsZero() bool {
	return r.Repository == "" && r.Number == 0
}

// Owner returns the repository owner segment.
func (r PullRequestRef) Owner() string {
	owner, _, _ := strings.Cut(r.Repository, "/")
	return owner
}

// Name returns the repository name segment.
func (r PullRequestRef) Name() string {
	_, name, _ := strings.Cut(r.Repository, "/")
	return name
}

// String renders the ref in the conventional "owner/name#number" form.
func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s#%d", r.Repository, r.Number)
}
