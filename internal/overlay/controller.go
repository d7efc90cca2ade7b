package overlay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"codeberg.org/snonux/glossa/internal"
	"codeberg.org/snonux/glossa/internal/api"
	"codeberg.org/snonux/glossa/internal/clock"
	"codeberg.org/snonux/glossa/internal/identity"
	"codeberg.org/snonux/glossa/internal/selection"
)

const previewRunes = 40

// Translator resolves a selection to its translation.
type Translator interface {
	Translate(ctx context.Context, text, userID string) (api.Translation, error)
}

// Stats counts controller transitions.
type Stats struct {
	Shown     int
	Resolved  int
	Failed    int
	Stale     int
	Dismissed int
}

// Controller owns the lifecycle of at most one popup. Translation results
// are tagged with the popup's instance token and dropped when the popup
// they were started for is no longer the active one.
type Controller struct {
	doc    Document
	tr     Translator
	ids    identity.Store
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger
	msgs   *Messages

	ctx       context.Context
	cancelAll context.CancelFunc
	wg        sync.WaitGroup

	mu     sync.Mutex
	nextID uint64
	active *Popup
	cancel context.CancelFunc
	fading map[uint64]clock.Timer
	stats  Stats
	closed bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfig replaces the default configuration. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(c *Controller) { c.cfg = cfg.withDefaults() }
}

// WithClock sets the clock used for the fade-out.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithMessages sets the popup strings. By default they are loaded for
// the configured locale.
func WithMessages(m *Messages) Option {
	return func(c *Controller) { c.msgs = m }
}

// NewController creates a controller rendering into doc. ids may be nil,
// in which case every popup is shown in guest mode.
func NewController(doc Document, tr Translator, ids identity.Store, opts ...Option) *Controller {
	c := &Controller{
		doc:    doc,
		tr:     tr,
		ids:    ids,
		cfg:    DefaultConfig(),
		clock:  clock.Real(),
		logger: slog.Default(),
		fading: make(map[uint64]clock.Timer),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.msgs == nil {
		c.msgs = NewMessages(c.cfg.Locale, c.logger)
	}
	c.ctx, c.cancelAll = context.WithCancel(context.Background())
	return c
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// Show replaces any existing popup with a new one for snap and starts
// translating it. It returns the new instance token, or 0 when nothing
// was shown.
func (c *Controller) Show(snap selection.Snapshot) uint64 {
	if strings.TrimSpace(snap.Text) == "" {
		return 0
	}

	user := identity.Current(c.ctx, c.ids, c.logger)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0
	}
	c.removeAllLocked()

	c.nextID++
	p := Popup{
		ID:          c.nextID,
		Snapshot:    snap,
		Top:         snap.Anchor.Top - c.cfg.VerticalOffset,
		Left:        snap.Anchor.Left,
		Original:    snap.Text,
		Status:      c.msgs.Translating(),
		Instruction: c.msgs.Instruction(c.cfg.SaveKey, user),
		State:       State{Phase: PhaseLoading},
	}
	if err := c.doc.Append(p); err != nil {
		c.logger.Error("failed to append popup", "popup", p.ID, "error", err)
		return 0
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.RequestTimeout)
	c.active = &p
	c.cancel = cancel
	c.stats.Shown++

	c.logger.Debug("popup shown", "popup", p.ID, "text", internal.Preview(snap.Text, previewRunes), "user", identity.IDOrGuest(user))

	c.wg.Add(1)
	go c.translate(ctx, cancel, p.ID, snap.Text, identity.IDOrEmpty(user))
	return p.ID
}

func (c *Controller) translate(ctx context.Context, cancel context.CancelFunc, id uint64, text, userID string) {
	defer c.wg.Done()
	defer cancel()

	var (
		res api.Translation
		err error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: translator panicked: %v", api.ErrTranslationFailed, r)
			}
		}()
		res, err = c.tr.Translate(ctx, text, userID)
	}()

	c.complete(id, res, err)
}

func (c *Controller) complete(id uint64, res api.Translation, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil || c.active.ID != id {
		c.stats.Stale++
		c.logger.Debug("stale translation result discarded", "popup", id, "error", err)
		return
	}

	text := strings.TrimSpace(res.TranslatedText)
	if err == nil && text == "" {
		err = fmt.Errorf("%w: empty translation", api.ErrTranslationFailed)
	}

	if err != nil {
		c.logger.Warn("translation failed", "popup", id, "text", internal.Preview(c.active.Original, previewRunes), "error", err)
		c.active.State = State{Phase: PhaseFailed}
		c.active.Status = c.msgs.Failed()
		c.stats.Failed++
	} else {
		c.active.State = State{Phase: PhaseResolved, Text: text}
		c.active.Status = text
		c.stats.Resolved++
	}

	if err := c.doc.Update(*c.active); err != nil {
		c.logger.Error("failed to update popup", "popup", id, "error", err)
	}
}

// Release tears down the active popup and hands back its snapshot. The
// snapshot is released before the exit animation starts, so a late
// translation result cannot revive it.
func (c *Controller) Release() (selection.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return selection.Snapshot{}, false
	}
	snap := c.active.Snapshot
	c.teardownLocked()
	return snap, true
}

// Dismiss tears down the active popup, if any.
func (c *Controller) Dismiss() {
	c.Release()
}

// Active returns a copy of the active popup.
func (c *Controller) Active() (Popup, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return Popup{}, false
	}
	return *c.active, true
}

// State returns the state of the active popup, PhaseIdle when there is none.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return State{Phase: PhaseIdle}
	}
	return c.active.State
}

// Stats returns a snapshot of the transition counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Wait blocks until every started translation has completed.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close removes every popup immediately, cancels in-flight requests and
// waits for them to return. Show is a no-op afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.removeAllLocked()
	c.mu.Unlock()

	c.cancelAll()
	c.wg.Wait()
}

func (c *Controller) teardownLocked() {
	p := c.active
	c.active = nil
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.stats.Dismissed++

	if err := c.doc.FadeOut(p.ID); err != nil {
		c.logger.Warn("failed to fade popup", "popup", p.ID, "error", err)
	}
	id := p.ID
	c.fading[id] = c.clock.AfterFunc(c.cfg.FadeDuration, func() { c.finishFade(id) })
}

func (c *Controller) finishFade(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.fading[id]; !ok {
		return
	}
	delete(c.fading, id)
	if err := c.doc.Remove(id); err != nil {
		c.logger.Warn("failed to remove popup", "popup", id, "error", err)
	}
}

// removeAllLocked removes the active popup and every popup still fading out.
func (c *Controller) removeAllLocked() {
	if c.active != nil {
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		if err := c.doc.Remove(c.active.ID); err != nil {
			c.logger.Warn("failed to remove popup", "popup", c.active.ID, "error", err)
		}
		c.active = nil
	}
	for id, t := range c.fading {
		t.Stop()
		delete(c.fading, id)
		if err := c.doc.Remove(id); err != nil {
			c.logger.Warn("failed to remove popup", "popup", id, "error", err)
		}
	}
}
