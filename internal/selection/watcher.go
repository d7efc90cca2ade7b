package selection

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"codeberg.org/snonux/glossa/internal/clock"
)

// DefaultSettleDelay is how long the watcher waits after a select-all key
// before reading the selection; browsers update it after the key event.
const DefaultSettleDelay = 100 * time.Millisecond

// Source is the host page's selection API.
type Source interface {
	// Selection returns the current selection text and the bounding
	// rectangle of its first range. ok is false when there is no range.
	Selection() (text string, anchor Rect, ok bool)
}

// Watcher turns raw input events into Snapshots. Empty selections are
// dropped, so every emitted Snapshot has non-blank text.
type Watcher struct {
	src    Source
	emit   func(Snapshot)
	clock  clock.Clock
	settle time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	pending clock.Timer
	stopped bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithClock sets the clock used for the settle delay.
func WithClock(c clock.Clock) Option {
	return func(w *Watcher) { w.clock = c }
}

// WithSettleDelay overrides DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.settle = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher creates a watcher reading from src and emitting to emit.
func NewWatcher(src Source, emit func(Snapshot), opts ...Option) *Watcher {
	w := &Watcher{
		src:    src,
		emit:   emit,
		clock:  clock.Real(),
		settle: DefaultSettleDelay,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// PointerUp handles a pointer release anywhere in the document. It
// reports whether a snapshot was emitted.
func (w *Watcher) PointerUp() bool {
	return w.captureAndEmit("pointer")
}

// KeyUp handles a key release. Only select-all combinations are of
// interest; they schedule a capture after the settle delay. Repeated
// presses within the delay collapse into one capture.
func (w *Watcher) KeyUp(ev KeyEvent) bool {
	if !IsSelectAll(ev) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return false
	}
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = w.clock.AfterFunc(w.settle, func() {
		w.mu.Lock()
		w.pending = nil
		stopped := w.stopped
		w.mu.Unlock()

		if !stopped {
			w.captureAndEmit("keyboard")
		}
	})
	return true
}

// Capture reads the current selection. It returns false for a missing
// range or a selection that is blank after trimming.
func (w *Watcher) Capture() (Snapshot, bool) {
	if w.src == nil {
		return Snapshot{}, false
	}

	text, anchor, ok := w.src.Selection()
	if !ok {
		return Snapshot{}, false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Snapshot{}, false
	}

	return Snapshot{Text: text, Anchor: anchor}, true
}

// Stop cancels a pending select-all capture and ignores later key events.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopped = true
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
}

func (w *Watcher) captureAndEmit(trigger string) bool {
	snap, ok := w.Capture()
	if !ok {
		return false
	}

	w.logger.Debug("selection captured",
		"trigger", trigger,
		"length", len([]rune(snap.Text)))

	if w.emit != nil {
		w.emit(snap)
	}
	return true
}
