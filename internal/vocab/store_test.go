package vocab

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "db", "vocab.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_MigratesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := s.AddHighlight(context.Background(), "alice", "perro"); err != nil {
		t.Fatalf("AddHighlight failed: %v", err)
	}
	s.Close()

	// Reopening must not re-run or fail the migration and keeps the data.
	s, err = Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s.Close()

	words, err := s.Words(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Words failed: %v", err)
	}
	if !reflect.DeepEqual(words, []string{"perro"}) {
		t.Errorf("Words = %v", words)
	}
}

func TestStore_ProfileDefaults(t *testing.T) {
	s := openTestStore(t)

	p, err := s.Profile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	want := DefaultProfile("alice")
	if !reflect.DeepEqual(p, want) {
		t.Errorf("Profile = %+v, want %+v", p, want)
	}

	if _, err := s.Profile(context.Background(), " "); !errors.Is(err, ErrEmptyUser) {
		t.Errorf("Expected ErrEmptyUser, got %v", err)
	}
}

func TestStore_AddHighlight(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, w := range []string{"perro", "gato", "perro", "  casa "} {
		if _, err := s.AddHighlight(ctx, "alice", w); err != nil {
			t.Fatalf("AddHighlight(%q) failed: %v", w, err)
		}
	}

	p, err := s.AddHighlight(ctx, "bob", "hund")
	if err != nil {
		t.Fatalf("AddHighlight failed: %v", err)
	}
	if !reflect.DeepEqual(p.Words, []string{"hund"}) {
		t.Errorf("bob's words = %v", p.Words)
	}

	words, _ := s.Words(ctx, "alice")
	if !reflect.DeepEqual(words, []string{"perro", "gato", "casa"}) {
		t.Errorf("alice's words = %v", words)
	}

	if _, err := s.AddHighlight(ctx, "alice", "   "); !errors.Is(err, ErrEmptyWord) {
		t.Errorf("Expected ErrEmptyWord, got %v", err)
	}
}

func TestStore_RemoveHighlight(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	s.AddHighlight(ctx, "alice", "perro")
	s.AddHighlight(ctx, "alice", "gato")

	if err := s.RemoveHighlight(ctx, "alice", "perro"); err != nil {
		t.Fatalf("RemoveHighlight failed: %v", err)
	}
	if err := s.RemoveHighlight(ctx, "alice", "nada"); err != nil {
		t.Errorf("Removing a missing word should succeed: %v", err)
	}

	words, _ := s.Words(ctx, "alice")
	if !reflect.DeepEqual(words, []string{"gato"}) {
		t.Errorf("Words = %v", words)
	}
}

func TestStore_SetLanguages(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p, err := s.SetLanguages(ctx, "alice", "", "German")
	if err != nil {
		t.Fatalf("SetLanguages failed: %v", err)
	}
	if p.SourceLanguage != "auto" || p.TargetLanguage != "German" {
		t.Errorf("Unexpected profile %+v", p)
	}

	p, _ = s.SetLanguages(ctx, "alice", "Spanish", "")
	if p.SourceLanguage != "Spanish" || p.TargetLanguage != "German" {
		t.Errorf("Unexpected profile %+v", p)
	}

	src, dst, err := s.Preferences(ctx, "alice")
	if err != nil || src != "Spanish" || dst != "German" {
		t.Errorf("Preferences = %q, %q, %v", src, dst, err)
	}
}

func TestStore_PreferencesUnknownUser(t *testing.T) {
	s := openTestStore(t)

	src, dst, err := s.Preferences(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Preferences failed: %v", err)
	}
	if src != DefaultSourceLanguage || dst != DefaultTargetLanguage {
		t.Errorf("Expected defaults, got %q, %q", src, dst)
	}

	users, _ := s.Users(context.Background())
	if len(users) != 0 {
		t.Errorf("Preferences must not create users, got %v", users)
	}
}

func TestStore_DeleteUserAndStats(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	s.AddHighlight(ctx, "alice", "perro")
	s.AddHighlight(ctx, "alice", "gato")
	s.AddHighlight(ctx, "bob", "hund")

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.TotalUsers != 2 || st.TotalWords != 3 || !reflect.DeepEqual(st.Users, []string{"alice", "bob"}) {
		t.Errorf("Unexpected stats %+v", st)
	}

	if err := s.DeleteUser(ctx, "alice"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	st, _ = s.Stats(ctx)
	if st.TotalUsers != 1 || st.TotalWords != 1 {
		t.Errorf("Expected cascade delete, got %+v", st)
	}
}
