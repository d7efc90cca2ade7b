package vocab

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Default language pair of a new user.
const (
	DefaultSourceLanguage = "auto"
	DefaultTargetLanguage = "Spanish"
)

// ErrEmptyWord is returned when saving a blank highlight.
var ErrEmptyWord = errors.New("highlight must not be empty")

// ErrEmptyUser is returned when a user id is blank.
var ErrEmptyUser = errors.New("user id must not be empty")

// Profile is a user's preferences together with the saved words in the
// order they were first saved.
type Profile struct {
	UserID         string
	SourceLanguage string
	TargetLanguage string
	Words          []string
}

// DefaultProfile is what an unknown or guest user gets.
func DefaultProfile(userID string) Profile {
	return Profile{
		UserID:         userID,
		SourceLanguage: DefaultSourceLanguage,
		TargetLanguage: DefaultTargetLanguage,
		Words:          []string{},
	}
}

// Stats summarizes the whole store.
type Stats struct {
	TotalUsers int
	TotalWords int
	Users      []string
}

// Store is the vocabulary database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and migrates it to the
// latest schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureUser(ctx context.Context, q querier, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUser
	}
	_, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO users (id) VALUES (?)`, userID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Profile returns the user's profile, creating the user with default
// preferences on first use.
func (s *Store) Profile(ctx context.Context, userID string) (Profile, error) {
	if err := s.ensureUser(ctx, s.db, userID); err != nil {
		return Profile{}, err
	}
	return s.profile(ctx, s.db, userID)
}

// Preferences returns the user's language pair without creating the user.
// Unknown users get the defaults.
func (s *Store) Preferences(ctx context.Context, userID string) (source, target string, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT source_language, target_language FROM users WHERE id = ?`, userID).
		Scan(&source, &target)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSourceLanguage, DefaultTargetLanguage, nil
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to read preferences: %w", err)
	}
	return source, target, nil
}

func (s *Store) profile(ctx context.Context, q querier, userID string) (Profile, error) {
	p := Profile{UserID: userID}
	err := q.QueryRowContext(ctx,
		`SELECT source_language, target_language FROM users WHERE id = ?`, userID).
		Scan(&p.SourceLanguage, &p.TargetLanguage)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read user: %w", err)
	}

	words, err := s.words(ctx, q, userID)
	if err != nil {
		return Profile{}, err
	}
	p.Words = words
	return p, nil
}

// AddHighlight saves word for the user. Saving a word twice keeps one
// entry. It returns the updated profile.
func (s *Store) AddHighlight(ctx context.Context, userID, word string) (Profile, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return Profile{}, ErrEmptyWord
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.ensureUser(ctx, tx, userID); err != nil {
		return Profile{}, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO highlights (id, user_id, word, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), userID, word, time.Now().UTC())
	if err != nil {
		return Profile{}, fmt.Errorf("failed to save highlight: %w", err)
	}

	p, err := s.profile(ctx, tx, userID)
	if err != nil {
		return Profile{}, err
	}
	if err := tx.Commit(); err != nil {
		return Profile{}, fmt.Errorf("failed to commit highlight: %w", err)
	}
	return p, nil
}

// RemoveHighlight deletes word from the user's list. Removing a word that
// is not saved is not an error.
func (s *Store) RemoveHighlight(ctx context.Context, userID, word string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM highlights WHERE user_id = ? AND word = ?`, userID, strings.TrimSpace(word))
	if err != nil {
		return fmt.Errorf("failed to remove highlight: %w", err)
	}
	return nil
}

// SetLanguages updates the user's language pair. Empty values keep the
// current setting.
func (s *Store) SetLanguages(ctx context.Context, userID, source, target string) (Profile, error) {
	if err := s.ensureUser(ctx, s.db, userID); err != nil {
		return Profile{}, err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET source_language = COALESCE(NULLIF(?, ''), source_language),
		    target_language = COALESCE(NULLIF(?, ''), target_language)
		WHERE id = ?`,
		strings.TrimSpace(source), strings.TrimSpace(target), userID)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to update languages: %w", err)
	}
	return s.profile(ctx, s.db, userID)
}

// Words returns the user's saved words in save order.
func (s *Store) Words(ctx context.Context, userID string) ([]string, error) {
	return s.words(ctx, s.db, userID)
}

func (s *Store) words(ctx context.Context, q querier, userID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT word FROM highlights WHERE user_id = ? ORDER BY created_at, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	defer rows.Close()

	words := []string{}
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// DeleteUser removes the user and all saved words.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Users returns all user ids in creation order.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM users ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// Stats summarizes the store.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return Stats{}, err
	}

	var words int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM highlights`).Scan(&words); err != nil {
		return Stats{}, fmt.Errorf("failed to count words: %w", err)
	}

	return Stats{TotalUsers: len(users), TotalWords: words, Users: users}, nil
}
