package highlighter

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"codeberg.org/snonux/glossa/internal/clock"
	"codeberg.org/snonux/glossa/internal/identity"
	"codeberg.org/snonux/glossa/internal/overlay"
	"codeberg.org/snonux/glossa/internal/savetrigger"
	"codeberg.org/snonux/glossa/internal/selection"
)

// ErrAlreadyAttached is returned when a pipeline is attached to a page twice.
var ErrAlreadyAttached = errors.New("highlighter already attached")

// EventType identifies a host page event.
type EventType int

const (
	EventPointerUp EventType = iota + 1
	EventKeyUp
	EventKeyDown
)

func (t EventType) String() string {
	switch t {
	case EventPointerUp:
		return "pointerup"
	case EventKeyUp:
		return "keyup"
	case EventKeyDown:
		return "keydown"
	default:
		return "unknown"
	}
}

// Event is a host page event. Key is set for keyboard events.
type Event struct {
	Type EventType
	Key  *selection.KeyEvent
}

// Host is the page the pipeline runs in.
type Host interface {
	selection.Source
	overlay.Document
}

// Backend translates selections and persists saved words.
type Backend interface {
	overlay.Translator
	savetrigger.Saver
}

// Config holds the pipeline tunables.
type Config struct {
	Overlay     overlay.Config
	SettleDelay time.Duration
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		Overlay:     overlay.DefaultConfig(),
		SettleDelay: selection.DefaultSettleDelay,
	}
}

// Option configures a Highlighter.
type Option func(*options)

type options struct {
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithClock sets the clock for the settle delay and the fade-out.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Highlighter is one pipeline instance for one page.
type Highlighter struct {
	watcher  *selection.Watcher
	overlay  *overlay.Controller
	listener *savetrigger.Listener
	logger   *slog.Logger

	attached atomic.Bool
}

// New builds the pipeline. ids may be nil for guest-only operation.
func New(host Host, backend Backend, ids identity.Store, opts ...Option) *Highlighter {
	o := &options{
		cfg:    DefaultConfig(),
		clock:  clock.Real(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	ctrl := overlay.NewController(host, backend, ids,
		overlay.WithConfig(o.cfg.Overlay),
		overlay.WithClock(o.clock),
		overlay.WithLogger(o.logger.With("component", "overlay")))

	listener := savetrigger.NewListener(ctrl, backend, ids,
		savetrigger.WithSaveKey(ctrl.Config().SaveKey),
		savetrigger.WithTimeout(ctrl.Config().RequestTimeout),
		savetrigger.WithLogger(o.logger.With("component", "savetrigger")))

	watcher := selection.NewWatcher(host, func(s selection.Snapshot) { ctrl.Show(s) },
		selection.WithClock(o.clock),
		selection.WithSettleDelay(o.cfg.SettleDelay),
		selection.WithLogger(o.logger.With("component", "selection")))

	return &Highlighter{
		watcher:  watcher,
		overlay:  ctrl,
		listener: listener,
		logger:   o.logger,
	}
}

// Overlay returns the overlay controller.
func (h *Highlighter) Overlay() *overlay.Controller {
	return h.overlay
}

// Attach marks the pipeline as attached to its page. A page must only
// ever get one set of listeners.
func (h *Highlighter) Attach() error {
	if !h.attached.CompareAndSwap(false, true) {
		return ErrAlreadyAttached
	}
	return nil
}

// Handle dispatches one event. It reports whether the event had an effect.
func (h *Highlighter) Handle(ev Event) bool {
	switch ev.Type {
	case EventPointerUp:
		return h.watcher.PointerUp()
	case EventKeyUp:
		if ev.Key == nil {
			return false
		}
		return h.watcher.KeyUp(*ev.Key)
	case EventKeyDown:
		return h.listener.KeyDown(ev.Key)
	default:
		h.logger.Debug("ignoring unknown event", "type", ev.Type)
		return false
	}
}

// Run attaches the pipeline and handles events until ctx is done or the
// channel is closed.
func (h *Highlighter) Run(ctx context.Context, events <-chan Event) error {
	if err := h.Attach(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			h.Handle(ev)
		}
	}
}

// Wait blocks until in-flight translations and saves have finished.
func (h *Highlighter) Wait() {
	h.overlay.Wait()
	h.listener.Wait()
}

// Close stops the pipeline, removes any popup and waits for background
// requests to return.
func (h *Highlighter) Close() {
	h.watcher.Stop()
	h.listener.Close()
	h.overlay.Close()
}
