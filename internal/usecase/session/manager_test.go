package session_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/pr-guardian/internal/domain"
	"github.com/bkyoung/pr-guardian/internal/usecase/session"
)

const validURL = "https://github.com/acme/widgets/pull/7"

// MockExecutor is a scripted executor. Results are consumed in order; the
// last one repeats.
type MockExecutor struct {
	mu      sync.Mutex
	RunFunc func(ctx context.Context, task string) (domain.RunResult, error)
	Results []domain.RunResult
	Err     error

	Tasks []string
}

func (m *MockExecutor) Run(ctx context.Context, task string) (domain.RunResult, error) {
	m.mu.Lock()
	m.Tasks = append(m.Tasks, task)
	call := len(m.Tasks)
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, task)
	}
	if m.Err != nil {
		return domain.RunResult{}, m.Err
	}
	if len(m.Results) == 0 {
		return domain.CompleteResult("Looks good."), nil
	}
	idx := call - 1
	if idx >= len(m.Results) {
		idx = len(m.Results) - 1
	}
	return m.Results[idx], nil
}

func (m *MockExecutor) RunCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Tasks)
}

// MockStore records sessions passed to RecordSession.
type MockStore struct {
	mu       sync.Mutex
	Recorded []domain.ReviewSession
	Err      error
}

func (m *MockStore) RecordSession(ctx context.Context, s domain.ReviewSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Recorded = append(m.Recorded, s)
	return m.Err
}

func submitToApproval(t *testing.T, exec *MockExecutor) *session.Manager {
	t.Helper()
	mgr := session.NewManager(exec)
	s, err := mgr.Submit(context.Background(), validURL)
	require.NoError(t, err)
	require.Equal(t, domain.StageAwaitingApproval, s.Stage)
	return mgr
}

func TestSubmit_ValidURL_ReachesAwaitingApproval(t *testing.T) {
	exec := &MockExecutor{Results: []domain.RunResult{domain.CompleteResult("Looks good.")}}
	mgr := session.NewManager(exec)

	s, err := mgr.Submit(context.Background(), validURL)
	require.NoError(t, err)

	assert.Equal(t, domain.StageAwaitingApproval, s.Stage)
	assert.Equal(t, domain.PullRequestRef{Repository: "acme/widgets", Number: 7}, s.PRRef)
	assert.Equal(t, "Looks good.", s.DraftComment)
	assert.Empty(t, s.ErrorMessage)

	// Transcript: user request, then the assistant presenting the draft.
	require.Len(t, s.Transcript, 2)
	assert.Equal(t, domain.ActorUser, s.Transcript[0].Actor)
	assert.Contains(t, s.Transcript[0].Text, validURL)
	assert.Equal(t, domain.ActorAssistant, s.Transcript[1].Actor)
	assert.Contains(t, s.Transcript[1].Text, "Looks good.")

	// The analysis task embeds the parsed ref.
	require.Equal(t, 1, exec.RunCount())
	assert.Contains(t, exec.Tasks[0], "PR #7")
	assert.Contains(t, exec.Tasks[0], "'acme/widgets'")
	assert.Contains(t, exec.Tasks[0], "get_pr_details_and_diff")
}

func TestSubmit_BadURL_FailsWithoutExecutorRun(t *testing.T) {
	exec := &MockExecutor{}
	mgr := session.NewManager(exec)

	s, err := mgr.Submit(context.Background(), "bad-url")
	require.NoError(t, err)

	assert.Equal(t, domain.StageFailed, s.Stage)
	assert.Equal(t, domain.FailureInvalidURL, s.FailureKind)
	assert.Contains(t, s.ErrorMessage, "bad-url")
	assert.Empty(t, s.DraftComment)
	assert.Zero(t, exec.RunCount(), "no executor (and hence no gateway) call for a parse failure")

	// Last transcript entry describes the parse error.
	last := s.Transcript[len(s.Transcript)-1]
	assert.Equal(t, domain.ActorAssistant, last.Actor)
	assert.Contains(t, last.Text, "bad-url")
}

func TestSubmit_ExecutorFailedState(t *testing.T) {
	exec := &MockExecutor{Results: []domain.RunResult{domain.FailedResult()}}
	mgr := session.NewManager(exec)

	s, err := mgr.Submit(context.Background(), validURL)
	require.NoError(t, err)

	assert.Equal(t, domain.StageFailed, s.Stage)
	assert.Equal(t, domain.FailureAnalysis, s.FailureKind)
	assert.Empty(t, s.DraftComment, "draft stays unset when analysis fails")
	assert.Contains(t, s.ErrorMessage, "failed")
}

func TestSubmit_ExecutorOtherState_TagPreserved(t *testing.T) {
	exec := &MockExecutor{Results: []domain.RunResult{domain.OtherResult("NEED_CLARIFICATION")}}
	mgr := session.NewManager(exec)

	s, err := mgr.Submit(context.Background(), validURL)
	require.NoError(t, err)

	assert.Equal(t, domain.StageFailed, s.Stage)
	assert.Contains(t, s.ErrorMessage, "NEED_CLARIFICATION")
}

func TestSubmit_ExecutorEmptyOutput(t *testing.T) {
	exec := &MockExecutor{Results: []domain.RunResult{domain.CompleteResult("")}}
	mgr := session.NewManager(exec)

	s, err := mgr.Submit(context.Background(), validURL)
	require.NoError(t, err)

	assert.Equal(t, domain.StageFailed, s.Stage)
	assert.Equal(t, domain.FailureAnalysis, s.FailureKind)
	assert.Contains(t, s.ErrorMessage, "draft comment")
}

func TestSubmit_ExecutorError_MessagePreservedVerbatim(t *testing.T) {
	exec := &MockExecutor{Err: errors.New("gemini: rate limit exceeded: quota (status: 429)")}
	mgr := session.NewManager(exec)

	s, err := mgr.Submit(context.Background(), validURL)
	require.NoError(t, err, "executor faults never escape to the shell")

	assert.Equal(t, domain.StageFailed, s.Stage)
	assert.Contains(t, s.ErrorMessage, "rate limit exceeded")
	last := s.Transcript[len(s.Transcript)-1]
	assert.Equal(t, s.ErrorMessage, last.Text)
}

func TestApprove_PostsStoredDraftExactlyOnce(t *testing.T) {
	exec := &MockExecutor{Results: []domain.RunResult{
		domain.CompleteResult("X"),
		domain.CompleteResult("The comment has been posted."),
	}}
	mgr := submitToApproval(t, exec)

	s, err := mgr.Approve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.StageDone, s.Stage)
	assert.Equal(t, domain.OutcomePosted, s.Outcome)
	assert.Equal(t, "X", s.DraftComment)

	// Exactly one posting run, and its task embeds the stored draft.
	require.Equal(t, 2, exec.RunCount())
	assert.Contains(t, exec.Tasks[1], "post_comment_to_pr")
	assert.True(t, strings.HasSuffix(exec.Tasks[1], "X"), "posting task must end with the stored draft")

	last := s.Transcript[len(s.Transcript)-1]
	assert.Contains(t, last.Text, "Success")
}

func TestApprove_PostingFailure_RetainsDraft(t *testing.T) {
	exec := &MockExecutor{Results: []domain.RunResult{
		domain.CompleteResult("X"),
		domain.FailedResult(),
	}}
	mgr := submitToApproval(t, exec)

	s, err := mgr.Approve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.StageFailed, s.Stage)
	assert.Equal(t, domain.FailurePost, s.FailureKind)
	assert.Equal(t, "X", s.DraftComment, "draft retained after a post failure")
}

func TestApprove_ExecutorError_RetainsDraft(t *testing.T) {
	calls := 0
	exec := &MockExecutor{}
	exec.RunFunc = func(ctx context.Context, task string) (domain.RunResult, error) {
		calls++
		if calls == 1 {
			return domain.CompleteResult("X"), nil
		}
		return domain.RunResult{}, errors.New("GitHub request failed (status 503): upstream down")
	}
	mgr := submitToApproval(t, exec)

	s, err := mgr.Approve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.StageFailed, s.Stage)
	assert.Equal(t, "X", s.DraftComment)
	assert.Contains(t, s.ErrorMessage, "status 503")
}

func TestReject_NoPostOccurs(t *testing.T) {
	exec := &MockExecutor{Results: []domain.RunResult{domain.CompleteResult("X")}}
	mgr := submitToApproval(t, exec)

	s, err := mgr.Reject()
	require.NoError(t, err)

	assert.Equal(t, domain.StageDone, s.Stage)
	assert.Equal(t, domain.OutcomeCancelled, s.Outcome)
	assert.Equal(t, 1, exec.RunCount(), "rejection performs no executor run")

	last := s.Transcript[len(s.Transcript)-1]
	assert.Contains(t, last.Text, "cancelled")
}

func TestApprovalGate_OnlyAwaitingApprovalMayPost(t *testing.T) {
	t.Run("approve from idle", func(t *testing.T) {
		mgr := session.NewManager(&MockExecutor{})
		_, err := mgr.Approve(context.Background())
		assert.ErrorIs(t, err, session.ErrNoPendingDraft)
	})

	t.Run("approve after done", func(t *testing.T) {
		exec := &MockExecutor{Results: []domain.RunResult{
			domain.CompleteResult("X"),
			domain.CompleteResult("posted"),
		}}
		mgr := submitToApproval(t, exec)
		_, err := mgr.Approve(context.Background())
		require.NoError(t, err)

		_, err = mgr.Approve(context.Background())
		assert.ErrorIs(t, err, session.ErrNoPendingDraft)
		assert.Equal(t, 2, exec.RunCount(), "no second post attempt")
	})

	t.Run("reject from failed", func(t *testing.T) {
		exec := &MockExecutor{}
		mgr := session.NewManager(exec)
		_, err := mgr.Submit(context.Background(), "bad-url")
		require.NoError(t, err)

		_, err = mgr.Reject()
		assert.ErrorIs(t, err, session.ErrNoPendingDraft)
	})
}

func TestSubmit_NewURLFullyResetsSession(t *testing.T) {
	exec := &MockExecutor{Results: []domain.RunResult{
		domain.CompleteResult("first draft"),
		domain.FailedResult(),
		domain.CompleteResult("second draft"),
	}}
	mgr := session.NewManager(exec)

	_, err := mgr.Submit(context.Background(), validURL)
	require.NoError(t, err)
	s, err := mgr.Approve(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StageFailed, s.Stage)
	require.NotEmpty(t, s.ErrorMessage)

	s, err = mgr.Submit(context.Background(), "https://github.com/octo/kit/pull/12")
	require.NoError(t, err)

	assert.Equal(t, domain.StageAwaitingApproval, s.Stage)
	assert.Equal(t, domain.PullRequestRef{Repository: "octo/kit", Number: 12}, s.PRRef)
	assert.Equal(t, "second draft", s.DraftComment)
	assert.Empty(t, s.ErrorMessage, "prior error cleared")
	assert.Empty(t, s.FailureKind)
	assert.Len(t, s.Transcript, 2, "prior transcript discarded")
}

func TestSubmit_WhileInFlight_Rejected(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	exec := &MockExecutor{}
	exec.RunFunc = func(ctx context.Context, task string) (domain.RunResult, error) {
		close(started)
		<-release
		return domain.CompleteResult("draft"), nil
	}
	mgr := session.NewManager(exec)

	done := make(chan domain.ReviewSession, 1)
	go func() {
		s, _ := mgr.Submit(context.Background(), validURL)
		done <- s
	}()

	<-started
	_, err := mgr.Submit(context.Background(), "https://github.com/octo/kit/pull/12")
	assert.ErrorIs(t, err, session.ErrSessionBusy)
	_, err = mgr.Approve(context.Background())
	assert.ErrorIs(t, err, session.ErrSessionBusy)
	_, err = mgr.Reject()
	assert.ErrorIs(t, err, session.ErrSessionBusy)

	close(release)
	s := <-done
	assert.Equal(t, domain.StageAwaitingApproval, s.Stage)
	assert.Equal(t, "draft", s.DraftComment)
}

func TestSession_SnapshotIsDetached(t *testing.T) {
	exec := &MockExecutor{Results: []domain.RunResult{domain.CompleteResult("X")}}
	mgr := submitToApproval(t, exec)

	snap := mgr.Session()
	snap.Transcript[0].Text = "tampered"
	snap.DraftComment = "tampered"

	fresh := mgr.Session()
	assert.NotEqual(t, "tampered", fresh.Transcript[0].Text)
	assert.Equal(t, "X", fresh.DraftComment)
}

func TestTerminalSessions_AreRecorded(t *testing.T) {
	exec := &MockExecutor{Results: []domain.RunResult{
		domain.CompleteResult("X"),
		domain.CompleteResult("posted"),
	}}
	store := &MockStore{}
	mgr := session.NewManager(exec)
	mgr.SetStore(store)
	mgr.SetClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })

	_, err := mgr.Submit(context.Background(), validURL)
	require.NoError(t, err)
	assert.Empty(t, store.Recorded, "AwaitingApproval is not terminal")

	_, err = mgr.Approve(context.Background())
	require.NoError(t, err)

	require.Len(t, store.Recorded, 1)
	recorded := store.Recorded[0]
	assert.Equal(t, domain.StageDone, recorded.Stage)
	assert.Equal(t, domain.OutcomePosted, recorded.Outcome)
	assert.False(t, recorded.EndedAt.IsZero())
}

func TestStoreFailure_DoesNotFailTransition(t *testing.T) {
	exec := &MockExecutor{Results: []domain.RunResult{domain.CompleteResult("X")}}
	store := &MockStore{Err: errors.New("disk full")}
	mgr := submitToApproval(t, exec)
	mgr.SetStore(store)

	s, err := mgr.Reject()
	require.NoError(t, err)
	assert.Equal(t, domain.StageDone, s.Stage)
}
