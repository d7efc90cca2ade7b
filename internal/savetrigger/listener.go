package savetrigger

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"codeberg.org/snonux/glossa/internal"
	"codeberg.org/snonux/glossa/internal/api"
	"codeberg.org/snonux/glossa/internal/identity"
	"codeberg.org/snonux/glossa/internal/selection"
)

// DefaultSaveKey is the KeyboardEvent.key value that saves a word.
const DefaultSaveKey = "Shift"

const (
	defaultTimeout = 10 * time.Second
	previewRunes   = 40
)

// Releaser hands over the snapshot of the active popup and tears it down.
type Releaser interface {
	Release() (selection.Snapshot, bool)
}

// Saver persists a highlighted word.
type Saver interface {
	SaveHighlight(ctx context.Context, text, userID string) (api.Receipt, error)
}

// Listener reacts to the save key while a popup is showing.
type Listener struct {
	overlay Releaser
	saver   Saver
	ids     identity.Store
	saveKey string
	timeout time.Duration
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Listener.
type Option func(*Listener)

// WithSaveKey sets the designated key.
func WithSaveKey(key string) Option {
	return func(l *Listener) {
		if key != "" {
			l.saveKey = key
		}
	}
}

// WithTimeout bounds each save request.
func WithTimeout(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) { l.logger = logger }
}

// NewListener creates a listener. ids may be nil, in which case every
// word is saved for the guest user.
func NewListener(overlay Releaser, saver Saver, ids identity.Store, opts ...Option) *Listener {
	l := &Listener{
		overlay: overlay,
		saver:   saver,
		ids:     ids,
		saveKey: DefaultSaveKey,
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.ctx, l.cancel = context.WithCancel(context.Background())
	return l
}

// SaveKey returns the designated key.
func (l *Listener) SaveKey() string {
	return l.saveKey
}

// Matches reports whether ev is the save key.
func (l *Listener) Matches(ev *selection.KeyEvent) bool {
	return ev != nil && strings.EqualFold(ev.Key, l.saveKey)
}

// KeyDown handles a key press. When it is the save key and a popup is
// showing, the popup is torn down, the event's default is prevented and
// the word is persisted in the background. It reports whether the event
// was consumed.
func (l *Listener) KeyDown(ev *selection.KeyEvent) bool {
	if !l.Matches(ev) {
		return false
	}

	snap, ok := l.overlay.Release()
	if !ok {
		return false
	}
	ev.PreventDefault()

	l.wg.Add(1)
	go l.save(snap.Text)
	return true
}

func (l *Listener) save(text string) {
	defer l.wg.Done()

	preview := internal.Preview(text, previewRunes)
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("highlight save panicked", "text", preview, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(l.ctx, l.timeout)
	defer cancel()

	userID := identity.IDOrGuest(identity.Current(ctx, l.ids, l.logger))

	rc, err := l.saver.SaveHighlight(ctx, text, userID)
	if err != nil {
		l.logger.Warn("failed to save highlight", "text", preview, "user", userID, "error", err)
		return
	}

	words := 0
	if rc.UserData != nil {
		words = len(rc.UserData.HighlightedWords)
	}
	l.logger.Info("highlight saved", "text", preview, "user", userID, "words", words)
}

// Wait blocks until all pending saves have finished.
func (l *Listener) Wait() {
	l.wg.Wait()
}

// Close cancels pending saves and waits for them.
func (l *Listener) Close() {
	l.cancel()
	l.wg.Wait()
}
