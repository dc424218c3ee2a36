package github

// PullRequest is the subset of the GitHub pull request resource the gateway
// needs.
type PullRequest struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	State    string `json:"state"`
	PatchURL string `json:"patch_url"`
	DiffURL  string `json:"diff_url"`
	HTMLURL  string `json:"html_url"`
}

// IssueComment is the response from creating an issue-style comment.
type IssueComment struct {
	ID      int64  `json:"id"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// createCommentRequest is the request body for the comment endpoint.
type createCommentRequest struct {
	Body string `json:"body"`
}

// ErrorResponse represents GitHub's error response format.
type ErrorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}
