package savetrigger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"codeberg.org/snonux/glossa/internal/api"
	"codeberg.org/snonux/glossa/internal/identity"
	"codeberg.org/snonux/glossa/internal/selection"
)

type fakeOverlay struct {
	mu       sync.Mutex
	active   *selection.Snapshot
	released int
}

func (o *fakeOverlay) show(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = &selection.Snapshot{Text: text}
}

func (o *fakeOverlay) Release() (selection.Snapshot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == nil {
		return selection.Snapshot{}, false
	}
	s := *o.active
	o.active = nil
	o.released++
	return s, true
}

type saveCall struct {
	text   string
	userID string
}

type fakeSaver struct {
	mu    sync.Mutex
	calls []saveCall
	err   error
}

func (s *fakeSaver) SaveHighlight(ctx context.Context, text, userID string) (api.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, saveCall{text, userID})
	if s.err != nil {
		return api.Receipt{}, s.err
	}
	return api.Receipt{Acknowledged: true, UserData: &api.UserData{HighlightedWords: []string{text}}}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListener_NoPopupIsNoop(t *testing.T) {
	ov := &fakeOverlay{}
	saver := &fakeSaver{}
	l := NewListener(ov, saver, nil, WithLogger(quietLogger()))
	defer l.Close()

	ev := &selection.KeyEvent{Key: "Shift", Shift: true}
	if l.KeyDown(ev) {
		t.Error("Expected KeyDown to ignore the key without a popup")
	}
	l.Wait()

	if ev.Prevented {
		t.Error("Expected default not to be prevented")
	}
	if len(saver.calls) != 0 {
		t.Errorf("Expected no save, got %+v", saver.calls)
	}
}

func TestListener_OtherKeyIgnored(t *testing.T) {
	ov := &fakeOverlay{}
	ov.show("perro")
	l := NewListener(ov, &fakeSaver{}, nil, WithLogger(quietLogger()))
	defer l.Close()

	if l.KeyDown(&selection.KeyEvent{Key: "a"}) {
		t.Error("Expected non-save key to be ignored")
	}
	if ov.released != 0 {
		t.Error("Popup must stay on other keys")
	}
}

func TestListener_SavesForUser(t *testing.T) {
	ov := &fakeOverlay{}
	ov.show("perro")
	saver := &fakeSaver{}
	ids := identity.NewMemoryStore(&identity.User{UserID: "alice"})
	l := NewListener(ov, saver, ids, WithLogger(quietLogger()))
	defer l.Close()

	prevented := false
	ev := &selection.KeyEvent{Key: "Shift", Shift: true, Prevent: func() { prevented = true }}
	if !l.KeyDown(ev) {
		t.Fatal("Expected KeyDown to consume the save key")
	}
	l.Wait()

	if !prevented || !ev.Prevented {
		t.Error("Expected default to be prevented")
	}
	if ov.released != 1 {
		t.Errorf("Expected popup to be released once, got %d", ov.released)
	}
	if len(saver.calls) != 1 || saver.calls[0] != (saveCall{"perro", "alice"}) {
		t.Errorf("Unexpected save calls %+v", saver.calls)
	}

	// The popup is gone, so a second press does nothing.
	if l.KeyDown(&selection.KeyEvent{Key: "Shift"}) {
		t.Error("Expected second press to be a no-op")
	}
}

func TestListener_GuestFallback(t *testing.T) {
	for name, ids := range map[string]identity.Store{
		"nil store":   nil,
		"empty store": identity.NewMemoryStore(nil),
	} {
		t.Run(name, func(t *testing.T) {
			ov := &fakeOverlay{}
			ov.show("perro")
			saver := &fakeSaver{}
			l := NewListener(ov, saver, ids, WithLogger(quietLogger()))
			defer l.Close()

			l.KeyDown(&selection.KeyEvent{Key: "Shift"})
			l.Wait()

			if len(saver.calls) != 1 || saver.calls[0].userID != identity.GuestID {
				t.Errorf("Expected guest save, got %+v", saver.calls)
			}
		})
	}
}

func TestListener_TeardownEvenWhenSaveFails(t *testing.T) {
	ov := &fakeOverlay{}
	ov.show("perro")
	saver := &fakeSaver{err: errors.New("backend down")}
	l := NewListener(ov, saver, nil, WithLogger(quietLogger()))
	defer l.Close()

	if !l.KeyDown(&selection.KeyEvent{Key: "Shift"}) {
		t.Fatal("Expected KeyDown to consume the key")
	}
	l.Wait()

	if ov.released != 1 {
		t.Error("Expected popup to be torn down")
	}
	if len(saver.calls) != 1 {
		t.Errorf("Expected one save attempt, got %d", len(saver.calls))
	}
}

func TestListener_CustomKey(t *testing.T) {
	ov := &fakeOverlay{}
	ov.show("perro")
	l := NewListener(ov, &fakeSaver{}, nil, WithSaveKey("s"), WithLogger(quietLogger()))
	defer l.Close()

	if l.KeyDown(&selection.KeyEvent{Key: "Shift"}) {
		t.Error("Shift must not save when the key is s")
	}
	if !l.Matches(&selection.KeyEvent{Key: "S"}) {
		t.Error("Expected key match to ignore case")
	}
	if !l.KeyDown(&selection.KeyEvent{Key: "s"}) {
		t.Error("Expected s to save")
	}
}
