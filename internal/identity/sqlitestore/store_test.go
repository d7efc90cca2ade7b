package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"codeberg.org/snonux/glossa/internal/identity"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SetGetClear(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "identity.db"))

	u, err := s.Get(ctx)
	if err != nil || u != nil {
		t.Fatalf("Expected empty store, got %v, %v", u, err)
	}

	if err := s.Set(ctx, identity.User{UserID: "alice", DisplayName: "Alice"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	u, err = s.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if u == nil || u.UserID != "alice" || u.DisplayName != "Alice" {
		t.Errorf("Unexpected user %+v", u)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if u, _ := s.Get(ctx); u != nil {
		t.Errorf("Expected nil after Clear, got %+v", u)
	}
}

func TestStore_RejectsEmptyID(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "identity.db"))
	if err := s.Set(context.Background(), identity.User{}); !errors.Is(err, identity.ErrInvalidUser) {
		t.Errorf("Expected ErrInvalidUser, got %v", err)
	}
}

func TestStore_SharedBetweenHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "identity.db")

	writer := openTestStore(t, path)
	reader := openTestStore(t, path)

	if err := writer.Set(ctx, identity.User{UserID: "alice"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := reader.Set(ctx, identity.User{UserID: "bob"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	u, err := writer.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if u == nil || u.UserID != "bob" {
		t.Errorf("Expected last write (bob) to win, got %+v", u)
	}

	if got := identity.Current(ctx, reader, nil); got == nil || got.UserID != "bob" {
		t.Errorf("Current() = %+v, want bob", got)
	}
}
