// Package session implements the review session state machine: the workflow
// that turns a submitted pull request URL into a drafted review comment,
// gates it behind human approval, and posts it on approval.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bkyoung/pr-guardian/internal/domain"
	"github.com/bkyoung/pr-guardian/internal/prurl"
)

// Executor runs a natural-language task to a terminal state. The manager
// treats it as a single blocking call.
type Executor interface {
	Run(ctx context.Context, task string) (domain.RunResult, error)
}

// Logger defines the structured logging interface used by the manager.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Store persists finished sessions. Recording is best effort: a store
// failure never fails a transition.
type Store interface {
	RecordSession(ctx context.Context, session domain.ReviewSession) error
}

// ErrSessionBusy is returned when a submit, approve, or reject arrives while
// an executor run is in flight. In-flight work is never silently discarded.
var ErrSessionBusy = errors.New("a review is already in progress")

// ErrNoPendingDraft is returned when approve or reject is called in a stage
// other than AwaitingApproval.
var ErrNoPendingDraft = errors.New("no draft comment is awaiting approval")

// Manager owns exactly one ReviewSession and drives it through the workflow:
//
//	Idle --submit--> Analyzing --> AwaitingApproval --approve--> Posting --> Done
//	                     |                 |                        |
//	                     v                 +--reject--> Done        v
//	                  Failed                                     Failed
//
// Terminal stages (Done, Failed) accept only a fresh submit, which resets
// every field including the transcript. All entry points are safe for
// concurrent use; calls that arrive while an executor run is in flight fail
// fast with ErrSessionBusy.
type Manager struct {
	mu       sync.Mutex
	executor Executor
	logger   Logger
	store    Store
	session  domain.ReviewSession
	now      func() time.Time
}

// NewManager creates a manager with an idle session.
func NewManager(executor Executor) *Manager {
	return &Manager{
		executor: executor,
		session:  domain.NewReviewSession(),
		now:      time.Now,
	}
}

// SetLogger sets the logger for state transitions.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// SetStore sets the store that records finished sessions.
func (m *Manager) SetStore(store Store) {
	m.store = store
}

// SetClock overrides the time source (for testing).
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Session returns a snapshot of the current session for rendering.
func (m *Manager) Session() domain.ReviewSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Clone()
}

// Submit starts a new review for the given URL. Any previous session is
// discarded in full: transcript, draft, and error are reset. Every failure
// lands in the Failed stage with the message preserved in the session;
// Submit returns an error only for the in-flight guard.
func (m *Manager) Submit(ctx context.Context, rawURL string) (domain.ReviewSession, error) {
	m.mu.Lock()
	if m.session.Stage.InFlight() {
		snapshot := m.session.Clone()
		m.mu.Unlock()
		return snapshot, ErrSessionBusy
	}

	m.session = domain.NewReviewSession()
	m.session.StartedAt = m.now()
	m.session.Append(domain.ActorUser, fmt.Sprintf("Please review this PR: %s", rawURL))

	ref, err := prurl.Parse(rawURL)
	if err != nil {
		m.failLocked(ctx, domain.FailureInvalidURL, err.Error())
		snapshot := m.session.Clone()
		m.mu.Unlock()
		return snapshot, nil
	}

	m.session.PRRef = ref
	m.session.Stage = domain.StageAnalyzing
	m.logInfo(ctx, "analysis started", map[string]interface{}{"pr": ref.String()})
	m.mu.Unlock()

	// The executor call blocks; the lock is released so that concurrent
	// callers hit the in-flight guard instead of queueing behind the run.
	result, runErr := m.executor.Run(ctx, analysisTask(ref))

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case runErr != nil:
		m.failLocked(ctx, domain.FailureAnalysis, fmt.Sprintf("An unexpected error occurred: %v", runErr))
	case !result.Completed():
		m.failLocked(ctx, domain.FailureAnalysis, fmt.Sprintf("Agent run failed. Final state: %s", resultState(result)))
	case result.Output == "":
		m.failLocked(ctx, domain.FailureAnalysis, "Agent failed to produce a draft comment.")
	default:
		m.session.DraftComment = result.Output
		m.session.Stage = domain.StageAwaitingApproval
		m.session.Append(domain.ActorAssistant, fmt.Sprintf(
			"Here is my draft review comment:\n\n%s\n\nShould I post this to the pull request?", result.Output))
		m.logInfo(ctx, "draft ready for approval", map[string]interface{}{"pr": ref.String()})
	}

	return m.session.Clone(), nil
}

// Approve posts the stored draft comment. The approval carries intent only:
// the posted body is always the draft recorded on entry to AwaitingApproval,
// never a caller-supplied value. Exactly one post attempt is made.
func (m *Manager) Approve(ctx context.Context) (domain.ReviewSession, error) {
	m.mu.Lock()
	if m.session.Stage.InFlight() {
		snapshot := m.session.Clone()
		m.mu.Unlock()
		return snapshot, ErrSessionBusy
	}
	if m.session.Stage != domain.StageAwaitingApproval {
		snapshot := m.session.Clone()
		m.mu.Unlock()
		return snapshot, ErrNoPendingDraft
	}

	m.session.Append(domain.ActorUser, "Yes, approve and post.")
	m.session.Stage = domain.StagePosting
	ref := m.session.PRRef
	draft := m.session.DraftComment
	m.logInfo(ctx, "posting approved draft", map[string]interface{}{"pr": ref.String()})
	m.mu.Unlock()

	result, runErr := m.executor.Run(ctx, postingTask(ref, draft))

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case runErr != nil:
		// DraftComment is retained for diagnostics; the only recovery is a
		// fresh submit.
		m.failLocked(ctx, domain.FailurePost, fmt.Sprintf("An error occurred while posting: %v", runErr))
	case !result.Completed():
		m.failLocked(ctx, domain.FailurePost, "Failed to post the comment.")
	default:
		m.session.Stage = domain.StageDone
		m.session.Outcome = domain.OutcomePosted
		m.session.EndedAt = m.now()
		m.session.Append(domain.ActorAssistant, "Success! The review comment has been posted to GitHub.")
		m.logInfo(ctx, "comment posted", map[string]interface{}{"pr": ref.String()})
		m.recordLocked(ctx)
	}

	return m.session.Clone(), nil
}

// Reject cancels the pending draft. It is a pure state transition: no
// gateway call is made.
func (m *Manager) Reject() (domain.ReviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.Stage.InFlight() {
		return m.session.Clone(), ErrSessionBusy
	}
	if m.session.Stage != domain.StageAwaitingApproval {
		return m.session.Clone(), ErrNoPendingDraft
	}

	m.session.Append(domain.ActorUser, "No, reject.")
	m.session.Append(domain.ActorAssistant, "Understood. Operation cancelled. Paste a new URL to start over.")
	m.session.Stage = domain.StageDone
	m.session.Outcome = domain.OutcomeCancelled
	m.session.EndedAt = m.now()
	m.logInfo(context.Background(), "draft rejected", map[string]interface{}{"pr": m.session.PRRef.String()})
	m.recordLocked(context.Background())

	return m.session.Clone(), nil
}

// failLocked transitions to Failed, preserving the message verbatim and
// appending it to the transcript. Callers must hold the lock.
func (m *Manager) failLocked(ctx context.Context, kind domain.FailureKind, message string) {
	m.session.Stage = domain.StageFailed
	m.session.FailureKind = kind
	m.session.ErrorMessage = message
	m.session.EndedAt = m.now()
	m.session.Append(domain.ActorAssistant, message)
	if m.logger != nil {
		m.logger.LogWarning(ctx, "session failed", map[string]interface{}{
			"kind":  string(kind),
			"error": message,
		})
	}
	m.recordLocked(ctx)
}

// recordLocked persists a terminal session. Callers must hold the lock.
func (m *Manager) recordLocked(ctx context.Context) {
	if m.store == nil || !m.session.Stage.Terminal() {
		return
	}
	if err := m.store.RecordSession(ctx, m.session.Clone()); err != nil && m.logger != nil {
		m.logger.LogWarning(ctx, "failed to record session", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (m *Manager) logInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.LogInfo(ctx, message, fields)
	}
}

func resultState(result domain.RunResult) string {
	if result.State == domain.RunStateOther && result.StateTag != "" {
		return result.StateTag
	}
	return string(result.State)
}
