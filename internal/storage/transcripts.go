// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists session transcripts to a local SQLite database.
//
// Every processed turn is recorded with its session id, question, answer
// and pipeline bookkeeping. The database lives under the usbai data
// directory and is owner-only, the same policy as the config file.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNotFound is returned when a session has no recorded turns.
var ErrNotFound = errors.New("session not found")

const schema = `
CREATE TABLE IF NOT EXISTS turns (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    turn INTEGER NOT NULL,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    kind TEXT NOT NULL,
    attempts INTEGER NOT NULL,
    cached INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id);
`

// Turn is one recorded question/answer exchange.
type Turn struct {
	SessionID string
	Turn      int
	Question  string
	Answer    string
	Kind      string
	Attempts  int
	Cached    bool
	Duration  time.Duration
	CreatedAt time.Time
}

// TranscriptStore records turns for one session at a time.
type TranscriptStore struct {
	db        *sql.DB
	sessionID string
	turn      int
}

// DefaultPath returns the transcript database location under baseDir.
func DefaultPath(baseDir string) string {
	return filepath.Join(baseDir, "transcripts.db")
}

// Open opens (or creates) the transcript database and starts a new
// session.
func Open(path string) (*TranscriptStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to restrict database permissions: %w", err)
	}

	return &TranscriptStore{
		db:        db,
		sessionID: uuid.NewString(),
	}, nil
}

// SessionID returns the id of the current session.
func (s *TranscriptStore) SessionID() string {
	return s.sessionID
}

// Record appends one turn to the current session.
func (s *TranscriptStore) Record(ctx context.Context, question, answer, kind string, attempts int, cached bool, duration time.Duration) error {
	s.turn++
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (session_id, turn, question, answer, kind, attempts, cached, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.sessionID, s.turn, question, answer, kind, attempts, cached,
		duration.Milliseconds(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}
	return nil
}

// Session returns all turns of a session in order.
func (s *TranscriptStore) Session(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, turn, question, answer, kind, attempts, cached, duration_ms, created_at
		 FROM turns WHERE session_id = ? ORDER BY turn`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var durationMs, createdAt int64
		if err := rows.Scan(&t.SessionID, &t.Turn, &t.Question, &t.Answer, &t.Kind,
			&t.Attempts, &t.Cached, &durationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Duration = time.Duration(durationMs) * time.Millisecond
		t.CreatedAt = time.Unix(createdAt, 0)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read turns: %w", err)
	}
	if len(turns) == 0 {
		return nil, ErrNotFound
	}
	return turns, nil
}

// Sessions lists distinct session ids, newest first.
func (s *TranscriptStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id FROM turns GROUP BY session_id ORDER BY MAX(created_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Clear removes every recorded turn. Used by the wipe operation.
func (s *TranscriptStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM turns`); err != nil {
		return fmt.Errorf("failed to clear transcripts: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *TranscriptStore) Close() error {
	return s.db.Close()
}
