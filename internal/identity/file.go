package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the user in a small JSON document. Writes replace the
// file atomically, so concurrent processes only ever see a whole record.
type FileStore struct {
	path string
}

type fileRecord struct {
	CurrentUser *User `json:"currentUser"`
}

// NewFileStore creates a store backed by path. The file is created on
// the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Close is a no-op; the file is not held open between calls.
func (s *FileStore) Close() error {
	return nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(ctx context.Context) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode identity file: %w", err)
	}
	return rec.CurrentUser, nil
}

func (s *FileStore) Set(ctx context.Context, u User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(fileRecord{CurrentUser: &u})
}

func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear identity file: %w", err)
	}
	return nil
}

func (s *FileStore) write(rec fileRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create identity directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".identity-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write identity: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write identity: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace identity file: %w", err)
	}
	return nil
}
