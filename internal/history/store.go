// Package history records finished cargo commands in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS commands (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT    NOT NULL,
	command     TEXT    NOT NULL,
	project     TEXT    NOT NULL DEFAULT '',
	exit_code   INTEGER NOT NULL,
	elapsed_ms  INTEGER NOT NULL,
	stopped     INTEGER NOT NULL DEFAULT 0,
	error       TEXT    NOT NULL DEFAULT '',
	finished_at TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_commands_finished ON commands(finished_at);
`

// Entry is one finished command.
type Entry struct {
	ID         int64
	SessionID  string
	Command    string
	Project    string
	ExitCode   int
	Elapsed    time.Duration
	Stopped    bool
	Error      string // Empty on success
	FinishedAt time.Time
}

// Success reports whether the command exited cleanly.
func (e Entry) Success() bool {
	return e.Error == ""
}

// Store is a command history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating parent directories.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends an entry and returns its ID.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	stopped := 0
	if e.Stopped {
		stopped = 1
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO commands (session_id, command, project, exit_code, elapsed_ms, stopped, error, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.SessionID, e.Command, e.Project, e.ExitCode, e.Elapsed.Milliseconds(), stopped, e.Error,
		e.FinishedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("record command: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first. A non-empty command
// restricts the result to that command kind.
func (s *Store) Recent(ctx context.Context, limit int, command string) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, command, project, exit_code, elapsed_ms, stopped, error, finished_at
		  FROM commands
		 WHERE ? = '' OR command = ?
		 ORDER BY id DESC
		 LIMIT ?
	`, command, command, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			elapsedMS int64
			stopped   int
			finished  string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Command, &e.Project, &e.ExitCode,
			&elapsedMS, &stopped, &e.Error, &finished); err != nil {
			return nil, err
		}
		e.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		e.Stopped = stopped != 0
		if t, err := time.Parse(time.RFC3339Nano, finished); err == nil {
			e.FinishedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes all entries and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM commands`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}
