package hostrod

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"codeberg.org/snonux/glossa/internal/highlighter"
	"codeberg.org/snonux/glossa/internal/overlay"
	"codeberg.org/snonux/glossa/internal/selection"
)

//go:embed bridge.js
var bridgeJS string

const (
	bindingName = "__glossa_binding"
	evalTimeout = 2 * time.Second
	eventBuffer = 32
)

// ErrBridgeMissing is returned when the current document has no bridge installed.
var ErrBridgeMissing = errors.New("page bridge not installed")

// Page is one tab running the pipeline. It implements highlighter.Host.
type Page struct {
	page   *rod.Page
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	events chan highlighter.Event
	done   chan struct{}

	closeOnce  sync.Once
	removeHook func() error
}

var _ highlighter.Host = (*Page)(nil)

func newPage(parent context.Context, rp *rod.Page, logger *slog.Logger) *Page {
	ctx, cancel := context.WithCancel(parent)
	return &Page{
		page:   rp,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan highlighter.Event, eventBuffer),
		done:   make(chan struct{}),
	}
}

// install adds the binding, starts forwarding its calls and registers the
// bridge for every new document.
func (p *Page) install(saveKey string) error {
	if err := (proto.RuntimeAddBinding{Name: bindingName}).Call(p.page); err != nil {
		return fmt.Errorf("add binding: %w", err)
	}

	script, err := bridgeCall(saveKey)
	if err != nil {
		return err
	}
	remove, err := p.page.EvalOnNewDocument(script)
	if err != nil {
		return fmt.Errorf("register bridge: %w", err)
	}
	p.removeHook = remove

	go p.listenBinding()
	return nil
}

func (p *Page) injectCurrent(saveKey string) error {
	ctx, cancel := context.WithTimeout(p.ctx, evalTimeout)
	defer cancel()

	_, err := p.page.Context(ctx).Eval(bridgeJS, saveKey, bindingName)
	return err
}

// bridgeCall renders the bridge as a self-invoking script.
func bridgeCall(saveKey string) (string, error) {
	args, err := json.Marshal([]string{saveKey, bindingName})
	if err != nil {
		return "", fmt.Errorf("encode bridge arguments: %w", err)
	}
	return fmt.Sprintf("(%s)(...%s);", bridgeJS, args), nil
}

func (p *Page) listenBinding() {
	defer close(p.done)
	defer close(p.events)

	p.page.Context(p.ctx).EachEvent(func(e *proto.RuntimeBindingCalled) bool {
		if e.Name != bindingName {
			return false
		}

		ev, err := decodeBindingPayload(e.Payload)
		if err != nil {
			p.logger.Warn("failed to parse binding payload", "error", err)
			return false
		}

		select {
		case p.events <- ev:
			return false
		case <-p.ctx.Done():
			return true
		}
	})()
}

// Events returns the page's input events. The channel is closed when the
// page is closed or its context is done.
func (p *Page) Events() <-chan highlighter.Event {
	return p.events
}

// Selection reads the current selection from the page.
func (p *Page) Selection() (string, selection.Rect, bool) {
	raw, err := p.call("() => window.__glossa ? window.__glossa.selection() : JSON.stringify({ok: false})")
	if err != nil {
		p.logger.Warn("failed to read selection", "error", err)
		return "", selection.Rect{}, false
	}

	var sel struct {
		OK     bool    `json:"ok"`
		Text   string  `json:"text"`
		Top    float64 `json:"top"`
		Left   float64 `json:"left"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := json.Unmarshal([]byte(raw.Str()), &sel); err != nil {
		p.logger.Warn("failed to decode selection", "error", err)
		return "", selection.Rect{}, false
	}
	if !sel.OK {
		return "", selection.Rect{}, false
	}
	return sel.Text, selection.Rect{Top: sel.Top, Left: sel.Left, Width: sel.Width, Height: sel.Height}, true
}

// Append renders a new popup.
func (p *Page) Append(pop overlay.Popup) error {
	ok, err := p.callBool("(p) => window.__glossa ? window.__glossa.append(p) : false", toView(pop))
	if err != nil {
		return fmt.Errorf("append popup %d: %w", pop.ID, err)
	}
	if !ok {
		return fmt.Errorf("append popup %d: %w", pop.ID, ErrBridgeMissing)
	}
	return nil
}

// Update repaints a popup. A popup lost to a navigation is ignored.
func (p *Page) Update(pop overlay.Popup) error {
	return p.apply("update", "(p) => window.__glossa ? window.__glossa.update(p) : false", pop.ID, toView(pop))
}

// FadeOut starts a popup's exit animation.
func (p *Page) FadeOut(id uint64) error {
	return p.apply("fade", "(id) => window.__glossa ? window.__glossa.fadeOut(id) : false", id, id)
}

// Remove deletes a popup from the page.
func (p *Page) Remove(id uint64) error {
	return p.apply("remove", "(id) => window.__glossa ? window.__glossa.remove(id) : false", id, id)
}

// Close stops event delivery and closes the tab.
func (p *Page) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.cancel()
		if p.removeHook != nil {
			_ = p.removeHook()
		}
		err = p.page.Close()
	})
	return err
}

func (p *Page) apply(op, js string, id uint64, arg any) error {
	ok, err := p.callBool(js, arg)
	if err != nil {
		return fmt.Errorf("%s popup %d: %w", op, id, err)
	}
	if !ok {
		p.logger.Debug("popup not in document", "op", op, "popup", id)
	}
	return nil
}

func (p *Page) callBool(js string, args ...any) (bool, error) {
	v, err := p.call(js, args...)
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}

func (p *Page) call(js string, args ...any) (resultValue, error) {
	ctx, cancel := context.WithTimeout(p.ctx, evalTimeout)
	defer cancel()

	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// resultValue is the subset of a remote object's value the page reads.
type resultValue interface {
	Str() string
	Bool() bool
}

type popupView struct {
	ID          uint64  `json:"id"`
	Top         float64 `json:"top"`
	Left        float64 `json:"left"`
	Original    string  `json:"original"`
	Status      string  `json:"status"`
	Instruction string  `json:"instruction"`
	Phase       string  `json:"phase"`
}

func toView(p overlay.Popup) popupView {
	return popupView{
		ID:          p.ID,
		Top:         p.Top,
		Left:        p.Left,
		Original:    p.Original,
		Status:      p.Status,
		Instruction: p.Instruction,
		Phase:       p.State.Phase.String(),
	}
}

type bindingPayload struct {
	Type      string `json:"type"`
	Key       string `json:"key"`
	Ctrl      bool   `json:"ctrl"`
	Meta      bool   `json:"meta"`
	Shift     bool   `json:"shift"`
	Alt       bool   `json:"alt"`
	Prevented bool   `json:"prevented"`
}

// decodeBindingPayload turns a bridge message into a pipeline event.
// Keydown events arrive after the page has already decided whether to
// cancel them, so the decision is carried in Prevented.
func decodeBindingPayload(payload string) (highlighter.Event, error) {
	var msg bindingPayload
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return highlighter.Event{}, err
	}

	var typ highlighter.EventType
	switch msg.Type {
	case "pointerup":
		return highlighter.Event{Type: highlighter.EventPointerUp}, nil
	case "keyup":
		typ = highlighter.EventKeyUp
	case "keydown":
		typ = highlighter.EventKeyDown
	default:
		return highlighter.Event{}, fmt.Errorf("unknown event type %q", msg.Type)
	}

	return highlighter.Event{
		Type: typ,
		Key: &selection.KeyEvent{
			Key:       msg.Key,
			Ctrl:      msg.Ctrl,
			Meta:      msg.Meta,
			Shift:     msg.Shift,
			Alt:       msg.Alt,
			Prevented: msg.Prevented,
		},
	}, nil
}
