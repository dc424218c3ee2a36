// Package store defines the persistence contract for finished review
// sessions. Implementations live under internal/adapter/store.
package store

import (
	"context"
	"time"

	"github.com/bkyoung/pr-guardian/internal/domain"
)

// SessionRecord is a persisted review session. Unlike the live
// domain.ReviewSession it carries a stable ID assigned at write time.
type SessionRecord struct {
	SessionID    string
	Repository   string
	Number       int
	Stage        domain.Stage
	Outcome      domain.Outcome
	FailureKind  domain.FailureKind
	DraftComment string
	ErrorMessage string
	StartedAt    time.Time
	EndedAt      time.Time
	Transcript   []domain.TranscriptEntry
}

// Store persists terminal review sessions for later inspection.
type Store interface {
	// RecordSession writes a finished session and returns its assigned ID.
	RecordSession(ctx context.Context, session domain.ReviewSession) (string, error)

	// GetSession retrieves a recorded session with its full transcript.
	GetSession(ctx context.Context, sessionID string) (SessionRecord, error)

	// ListSessions retrieves the most recent sessions, newest first,
	// limited by the given count. Transcripts are not loaded.
	ListSessions(ctx context.Context, limit int) ([]SessionRecord, error)

	// Close releases any underlying resources.
	Close() error
}
