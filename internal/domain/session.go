package domain

import "time"

// Stage is the lifecycle position of a review session.
type Stage string

const (
	StageIdle             Stage = "idle"
	StageAnalyzing        Stage = "analyzing"
	StageAwaitingApproval Stage = "awaiting_approval"
	StagePosting          Stage = "posting"
	StageDone             Stage = "done"
	StageFailed           Stage = "failed"
)

// Terminal reports whether the stage accepts only a fresh submit.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// InFlight reports whether an executor run is underway for this stage.
// Submitting, approving, or rejecting while in flight must be refused.
func (s Stage) InFlight() bool {
	return s == StageAnalyzing || s == StagePosting
}

// Outcome distinguishes how a session reached StageDone.
type Outcome string

const (
	OutcomePosted    Outcome = "posted"
	OutcomeCancelled Outcome = "cancelled"
)

// FailureKind categorizes how a session reached StageFailed.
type FailureKind string

const (
	FailureInvalidURL FailureKind = "invalid_url"
	FailureAnalysis   FailureKind = "analysis"
	FailurePost       FailureKind = "post"
)

// Actor identifies who produced a transcript entry.
type Actor string

const (
	ActorUser      Actor = "user"
	ActorAssistant Actor = "assistant"
)

// TranscriptEntry is one message in a session's conversation log.
type TranscriptEntry struct {
	Actor Actor  `json:"actor"`
	Text  string `json:"text"`
}

// ReviewSession is the mutable state of one user-initiated review.
//
// Invariants:
//   - DraftComment is set only once the draft has been produced
//     (AwaitingApproval and later) and is carried until the next submit.
//   - PRRef is set exactly when Stage != StageIdle.
//   - Transcript only grows within a session; it is cleared only when a new
//     URL is submitted, which resets every field.
type ReviewSession struct {
	Stage        Stage             `json:"stage"`
	PRRef        PullRequestRef    `json:"prRef"`
	DraftComment string            `json:"draftComment,omitempty"`
	Transcript   []TranscriptEntry `json:"transcript"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	FailureKind  FailureKind       `json:"failureKind,omitempty"`
	Outcome      Outcome           `json:"outcome,omitempty"`
	StartedAt    time.Time         `json:"startedAt,omitempty"`
	EndedAt      time.Time         `json:"endedAt,omitempty"`
}

// NewReviewSession returns an idle session with an empty transcript.
func NewReviewSession() ReviewSession {
	return ReviewSession{Stage: StageIdle}
}

// Append adds an entry to the transcript. The transcript is append-only
// within a session.
func (s *ReviewSession) Append(actor Actor, text string) {
	s.Transcript = append(s.Transcript, TranscriptEntry{Actor: actor, Text: text})
}

// Clone returns a deep copy of the session, safe to hand to shells for
// rendering while the original keeps mutating.
func (s ReviewSession) Clone() ReviewSession {
	out := s
	out.Transcript = make([]TranscriptEntry, len(s.Transcript))
	copy(out.Transcript, s.Transcript)
	return out
}
