//go:build js && wasm

// Command glossa-wasm is the highlighter compiled as a browser extension
// content script. The loader may set globalThis.glossaConfig to
// {backend, saveKey, locale} before starting it.
package main

import (
	"log/slog"
	"os"
	"syscall/js"

	"codeberg.org/snonux/glossa/internal/api"
	"codeberg.org/snonux/glossa/internal/highlighter"
	"codeberg.org/snonux/glossa/internal/identity"
	"codeberg.org/snonux/glossa/internal/selection"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := highlighter.DefaultConfig()
	backend := api.DefaultBaseURL
	if c := js.Global().Get("glossaConfig"); c.Truthy() {
		if v := c.Get("backend"); v.Type() == js.TypeString {
			backend = v.String()
		}
		if v := c.Get("saveKey"); v.Type() == js.TypeString {
			cfg.Overlay.SaveKey = v.String()
		}
		if v := c.Get("locale"); v.Type() == js.TypeString {
			cfg.Overlay.Locale = v.String()
		}
	} else if lang := js.Global().Get("navigator").Get("language"); lang.Type() == js.TypeString {
		cfg.Overlay.Locale = lang.String()
	}

	var ids identity.Store = newLocalStore()
	if cs := newChromeStore(); cs != nil {
		ids = cs
	}

	h := highlighter.New(newDOMHost(), api.NewClient(backend, api.WithLogger(logger)), ids,
		highlighter.WithConfig(cfg),
		highlighter.WithLogger(logger))

	if err := h.Attach(); err != nil {
		logger.Warn("highlighter already running", "error", err)
		return
	}

	doc := js.Global().Get("document")
	doc.Call("addEventListener", "mouseup", js.FuncOf(func(this js.Value, args []js.Value) any {
		h.Handle(highlighter.Event{Type: highlighter.EventPointerUp})
		return nil
	}), true)
	doc.Call("addEventListener", "keyup", js.FuncOf(func(this js.Value, args []js.Value) any {
		h.Handle(highlighter.Event{Type: highlighter.EventKeyUp, Key: keyEvent(args[0])})
		return nil
	}), true)
	doc.Call("addEventListener", "keydown", js.FuncOf(func(this js.Value, args []js.Value) any {
		h.Handle(highlighter.Event{Type: highlighter.EventKeyDown, Key: keyEvent(args[0])})
		return nil
	}), true)

	// Listeners run for the lifetime of the page.
	select {}
}

// keyEvent wraps a DOM KeyboardEvent. Handlers run synchronously inside
// the listener, so PreventDefault reaches the native event in time.
func keyEvent(e js.Value) *selection.KeyEvent {
	return &selection.KeyEvent{
		Key:       e.Get("key").String(),
		Ctrl:      e.Get("ctrlKey").Bool(),
		Meta:      e.Get("metaKey").Bool(),
		Shift:     e.Get("shiftKey").Bool(),
		Alt:       e.Get("altKey").Bool(),
		Prevented: e.Get("defaultPrevented").Bool(),
		Prevent:   func() { e.Call("preventDefault") },
	}
}
