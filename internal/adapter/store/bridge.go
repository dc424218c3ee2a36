// Package store bridges the persistence contract in internal/store to the
// narrower recording interface the session manager consumes.
package store

import (
	"context"

	"github.com/bkyoung/pr-guardian/internal/domain"
	"github.com/bkyoung/pr-guardian/internal/store"
)

// Recorder adapts a store.Store to the session manager's Store interface,
// which cares only that the write happened, not about the assigned ID.
type Recorder struct {
	store store.Store
}

// NewRecorder creates a Recorder backed by the given store.
func NewRecorder(s store.Store) *Recorder {
	return &Recorder{store: s}
}

// RecordSession persists a terminal session, discarding the assigned ID.
func (r *Recorder) RecordSession(ctx context.Context, session domain.ReviewSession) error {
	_, err := r.store.RecordSession(ctx, session)
	return err
}
