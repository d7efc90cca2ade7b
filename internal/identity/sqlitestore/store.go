// Package sqlitestore keeps the shared identity record in a SQLite file so
// that the CLI and a running browser host see each other's writes.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/glossa/internal/identity"
)

// Store is an identity.Store over a key/value table.
type Store struct {
	db *sql.DB
}

var _ identity.Store = (*Store)(nil)

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create identity directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open identity database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create identity table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context) (*identity.User, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, identity.CurrentUserKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrUnavailable, err)
	}

	var u identity.User
	if err := json.Unmarshal([]byte(value), &u); err != nil {
		return nil, fmt.Errorf("failed to decode stored user: %w", err)
	}
	return &u, nil
}

func (s *Store) Set(ctx context.Context, u identity.User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	value, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		identity.CurrentUserKey, string(value), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, identity.CurrentUserKey); err != nil {
		return fmt.Errorf("failed to clear user: %w", err)
	}
	return nil
}
