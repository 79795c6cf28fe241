// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat runs one conversational turn: optional web research, prompt
// assembly, the model call, and persistence of the exchange.
package chat

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/learnbuddy/pkg/types"
)

// Store keeps conversation history in SQLite.
type Store struct {
	db *sql.DB
}

// SessionInfo summarizes one stored conversation.
type SessionInfo struct {
	ID        string    `json:"id"`
	Messages  int       `json:"messages"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OpenStore opens or creates the history database at path, creating the
// parent directory and schema as needed.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id),
			role TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, rowid)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Append stores msg at the end of session, creating the session on first
// use. A zero CreatedAt is set to now.
func (s *Store) Append(ctx context.Context, session string, msg types.Message) error {
	if session == "" {
		return fmt.Errorf("session id is required")
	}
	role, err := types.ParseRole(string(msg.Role))
	if err != nil {
		return err
	}
	at := msg.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	stamp := at.UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		session, stamp, stamp,
	); err != nil {
		return fmt.Errorf("upserting session %s: %w", session, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, text, created_at) VALUES (?, ?, ?, ?)`,
		session, string(role), msg.Text, stamp,
	); err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return tx.Commit()
}

// Recent returns the last limit messages of session, oldest first. A limit
// of zero or less returns the whole session.
func (s *Store) Recent(ctx context.Context, session string, limit int) ([]types.Message, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, text, created_at FROM messages
		 WHERE session_id = ? ORDER BY rowid DESC LIMIT ?`,
		session, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []types.Message
	for rows.Next() {
		var role, text, created string
		if err := rows.Scan(&role, &text, &created); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		r, err := types.ParseRole(role)
		if err != nil {
			return nil, err
		}
		m := types.Message{Role: r, Text: text}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			m.CreatedAt = t
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Sessions lists stored conversations, most recently updated first.
func (s *Store) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.updated_at, count(m.rowid)
		 FROM sessions s LEFT JOIN messages m ON m.session_id = s.id
		 GROUP BY s.id ORDER BY s.updated_at DESC, s.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var updated string
		if err := rows.Scan(&info.ID, &updated, &info.Messages); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			info.UpdatedAt = t
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
