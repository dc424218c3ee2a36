package session

import (
	"fmt"

	"github.com/bkyoung/pr-guardian/internal/domain"
)

// analysisTask builds the executor task for the analysis stage. The task
// instructs the agent to fetch the PR, analyze it, and return only the
// markdown draft as its final output.
func analysisTask(ref domain.PullRequestRef) string {
	return fmt.Sprintf(`Your first job is to analyze PR #%d in the repository '%s'.
1. Use the `+"`get_pr_details_and_diff`"+` tool.
2. Analyze the content for clarity and security issues.
3. Synthesize a professional markdown review comment.
4. CRITICAL: Your final output must be ONLY the markdown text of the draft comment.`,
		ref.Number, ref.Repository)
}

// postingTask builds the executor task for the posting stage. The embedded
// comment is always the stored draft the user approved.
func postingTask(ref domain.PullRequestRef, draft string) string {
	return fmt.Sprintf("Use `post_comment_to_pr` to post this comment to PR #%d in repo '%s':\n\n%s",
		ref.Number, ref.Repository, draft)
}
