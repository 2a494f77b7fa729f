// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package capture persists recorded acceleration runs in SQLite so they can
// be replayed through the analysis pipeline offline.
package capture

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/relabs-tech/inertial_motion/internal/motion"
)

var ErrUnknownSession = errors.New("unknown capture session")

const schema = `
CREATE TABLE IF NOT EXISTS capture_sessions (
	session_id    TEXT PRIMARY KEY,
	label         TEXT NOT NULL,
	created_at_ns INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS capture_samples (
	session_id TEXT NOT NULL REFERENCES capture_sessions(session_id) ON DELETE CASCADE,
	seq        INTEGER NOT NULL,
	ts_ns      INTEGER NOT NULL,
	ax         REAL NOT NULL,
	ay         REAL NOT NULL,
	az         REAL NOT NULL,
	PRIMARY KEY (session_id, seq)
);
`

// Session is one recorded run.
type Session struct {
	ID        string
	Label     string
	CreatedAt time.Time
	Samples   int
}

// Sample is one earth-frame acceleration reading in g.
type Sample struct {
	Time  time.Time
	Accel motion.Vector
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the capture database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// A single connection keeps the PRAGMAs and in-memory databases coherent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// NewSession registers a new run and returns its generated ID.
func (s *Store) NewSession(ctx context.Context, label string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO capture_sessions (session_id, label, created_at_ns) VALUES (?, ?, ?)`,
		id, label, time.Now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

// AppendSamples adds samples to the end of a session in one transaction.
func (s *Store) AppendSamples(ctx context.Context, sessionID string, samples []Sample) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var next int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM capture_samples WHERE session_id = ?`,
		sessionID).Scan(&next)
	if err != nil {
		return fmt.Errorf("next seq: %w", err)
	}
	if next == 0 {
		if err := sessionExists(ctx, tx, sessionID); err != nil {
			return err
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO capture_samples (session_id, seq, ts_ns, ax, ay, az) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, smp := range samples {
		_, err := stmt.ExecContext(ctx, sessionID, next+int64(i), smp.Time.UnixNano(),
			smp.Accel.X, smp.Accel.Y, smp.Accel.Z)
		if err != nil {
			return fmt.Errorf("insert sample %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func sessionExists(ctx context.Context, q rowQueryer, sessionID string) error {
	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM capture_sessions WHERE session_id = ?`, sessionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	if err != nil {
		return fmt.Errorf("lookup session: %w", err)
	}
	return nil
}

// Samples returns a session's samples in recording order.
func (s *Store) Samples(ctx context.Context, sessionID string) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts_ns, ax, ay, az FROM capture_samples WHERE session_id = ? ORDER BY seq`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var (
			ts  int64
			smp Sample
		)
		if err := rows.Scan(&ts, &smp.Accel.X, &smp.Accel.Y, &smp.Accel.Z); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		smp.Time = time.Unix(0, ts).UTC()
		out = append(out, smp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	if len(out) == 0 {
		if err := sessionExists(ctx, s.db, sessionID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Sessions lists all runs, newest first.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.session_id, s.label, s.created_at_ns, COUNT(c.seq)
		FROM capture_sessions s
		LEFT JOIN capture_samples c ON c.session_id = s.session_id
		GROUP BY s.session_id
		ORDER BY s.created_at_ns DESC, s.session_id`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			sess    Session
			created int64
		)
		if err := rows.Scan(&sess.ID, &sess.Label, &created, &sess.Samples); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}
