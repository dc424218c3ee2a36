package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bkyoung/pr-guardian/internal/domain"
	"github.com/bkyoung/pr-guardian/internal/store"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- One row per finished review session
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		repository TEXT NOT NULL,
		number INTEGER NOT NULL,
		stage TEXT NOT NULL CHECK(stage IN ('done', 'failed')),
		outcome TEXT,
		failure_kind TEXT,
		draft_comment TEXT,
		error_message TEXT,
		started_at INTEGER NOT NULL,
		ended_at INTEGER NOT NULL
	);

	-- Conversation log for each session, in display order
	CREATE TABLE IF NOT EXISTS transcript_entries (
		entry_id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		actor TEXT NOT NULL CHECK(actor IN ('user', 'assistant')),
		text TEXT NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_transcript_session ON transcript_entries(session_id, position);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordSession writes a terminal session and its transcript in a single
// transaction, returning the assigned session ID.
func (s *Store) RecordSession(ctx context.Context, session domain.ReviewSession) (string, error) {
	if !session.Stage.Terminal() {
		return "", fmt.Errorf("cannot record session in stage %q", session.Stage)
	}

	sessionID := store.GenerateSessionID(session.StartedAt, session.PRRef.Repository, session.PRRef.Number)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (session_id, repository, number, stage, outcome, failure_kind, draft_comment, error_message, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sessionID,
		session.PRRef.Repository,
		session.PRRef.Number,
		string(session.Stage),
		string(session.Outcome),
		string(session.FailureKind),
		session.DraftComment,
		session.ErrorMessage,
		session.StartedAt.Unix(),
		session.EndedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transcript_entries (session_id, position, actor, text)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, entry := range session.Transcript {
		if _, err := stmt.ExecContext(ctx, sessionID, i, string(entry.Actor), entry.Text); err != nil {
			return "", fmt.Errorf("failed to insert transcript entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return sessionID, nil
}

// GetSession retrieves a recorded session with its transcript.
func (s *Store) GetSession(ctx context.Context, sessionID string) (store.SessionRecord, error) {
	query := `
		SELECT session_id, repository, number, stage, outcome, failure_kind, draft_comment, error_message, started_at, ended_at
		FROM sessions
		WHERE session_id = ?
	`

	record, err := scanSession(s.db.QueryRowContext(ctx, query, sessionID))
	if err != nil {
		if err == sql.ErrNoRows {
			return store.SessionRecord{}, fmt.Errorf("session not found: %s", sessionID)
		}
		return store.SessionRecord{}, fmt.Errorf("failed to get session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT actor, text
		FROM transcript_entries
		WHERE session_id = ?
		ORDER BY position ASC
	`, sessionID)
	if err != nil {
		return store.SessionRecord{}, fmt.Errorf("failed to get transcript: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var actor, text string
		if err := rows.Scan(&actor, &text); err != nil {
			return store.SessionRecord{}, fmt.Errorf("failed to scan transcript entry: %w", err)
		}
		record.Transcript = append(record.Transcript, domain.TranscriptEntry{
			Actor: domain.Actor(actor),
			Text:  text,
		})
	}

	if err := rows.Err(); err != nil {
		return store.SessionRecord{}, fmt.Errorf("error iterating transcript: %w", err)
	}

	return record, nil
}

// ListSessions retrieves the most recent sessions, newest first, limited by
// the given count. Transcripts are not loaded.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]store.SessionRecord, error) {
	query := `
		SELECT session_id, repository, number, stage, outcome, failure_kind, draft_comment, error_message, started_at, ended_at
		FROM sessions
		ORDER BY started_at DESC, session_id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var records []store.SessionRecord
	for rows.Next() {
		record, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return records, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (store.SessionRecord, error) {
	var record store.SessionRecord
	var stage, outcome, failureKind string
	var startedAt, endedAt int64

	if err := row.Scan(
		&record.SessionID,
		&record.Repository,
		&record.Number,
		&stage,
		&outcome,
		&failureKind,
		&record.DraftComment,
		&record.ErrorMessage,
		&startedAt,
		&endedAt,
	); err != nil {
		return store.SessionRecord{}, err
	}

	record.Stage = domain.Stage(stage)
	record.Outcome = domain.Outcome(outcome)
	record.FailureKind = domain.FailureKind(failureKind)
	record.StartedAt = time.Unix(startedAt, 0)
	record.EndedAt = time.Unix(endedAt, 0)
	return record, nil
}
