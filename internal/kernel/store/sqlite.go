package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

func unixToTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// SQLiteStore persists agents as a JSON blob keyed by id, for single-
// binary/local deployments with no external database. Grounded on the
// same JSON-blob persistence format as PostgresStore, via the pure-Go
// modernc.org/sqlite driver rather than cgo's mattn/go-sqlite3.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS agents (
	id TEXT PRIMARY KEY,
	blob BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
)`

// NewSQLiteStore opens (creating if absent) the database file at path and
// ensures the agents table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store: sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadAll(ctx context.Context) ([]StoredAgent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, blob, created_at, updated_at FROM agents`)
	if err != nil {
		return nil, fmt.Errorf("store: load all: %w", err)
	}
	defer rows.Close()

	var out []StoredAgent
	for rows.Next() {
		var a StoredAgent
		var createdAt, updatedAt int64
		if err := rows.Scan(&a.ID, &a.Blob, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("store: scan agent: %w", err)
		}
		a.CreatedAt = unixToTime(createdAt)
		a.UpdatedAt = unixToTime(updatedAt)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate agents: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Save(ctx context.Context, agent StoredAgent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agents (id, blob, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		agent.ID, agent.Blob, agent.CreatedAt.Unix(), agent.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("store: save agent %s: %w", agent.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete agent %s: %w", id, err)
	}
	return nil
}
