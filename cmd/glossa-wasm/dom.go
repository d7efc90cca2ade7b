//go:build js && wasm

package main

import (
	"fmt"
	"strconv"
	"sync"
	"syscall/js"

	"codeberg.org/snonux/glossa/internal/overlay"
	"codeberg.org/snonux/glossa/internal/selection"
)

const popupStyle = "position:fixed;" +
	"background:linear-gradient(135deg,rgb(237,189,99) 0%,rgb(255,255,255) 100%);" +
	"color:#333;padding:10px 14px;border-radius:5px;" +
	"box-shadow:0 4px 15px rgba(0,0,0,0.2);z-index:10000;" +
	"opacity:0;transform:translateY(10px);transition:all 0.3s ease-out;" +
	"pointer-events:none;max-width:300px;word-wrap:break-word;text-align:center;" +
	"font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;"

// domHost renders popups into the page and reads its selection.
type domHost struct {
	window   js.Value
	document js.Value

	mu     sync.Mutex
	popups map[uint64]js.Value
}

func newDOMHost() *domHost {
	return &domHost{
		window:   js.Global(),
		document: js.Global().Get("document"),
		popups:   make(map[uint64]js.Value),
	}
}

func (d *domHost) Selection() (string, selection.Rect, bool) {
	sel := d.window.Call("getSelection")
	if sel.IsNull() || sel.Get("rangeCount").Int() == 0 {
		return "", selection.Rect{}, false
	}

	rect := sel.Call("getRangeAt", 0).Call("getBoundingClientRect")
	return sel.Call("toString").String(), selection.Rect{
		Top:    rect.Get("top").Float(),
		Left:   rect.Get("left").Float(),
		Width:  rect.Get("width").Float(),
		Height: rect.Get("height").Float(),
	}, true
}

func (d *domHost) Append(p overlay.Popup) error {
	el := d.document.Call("createElement", "div")
	el.Set("className", "glossa-popup")
	el.Get("dataset").Set("popup", strconv.FormatUint(p.ID, 10))
	el.Get("style").Set("cssText", popupStyle)

	for _, css := range []string{
		"font-size:14px;font-weight:500;margin-bottom:4px;",
		"font-size:12px;font-weight:400;margin-bottom:4px;",
		"font-size:10px;font-weight:400;opacity:0.8;line-height:1.2;",
	} {
		line := d.document.Call("createElement", "div")
		line.Get("style").Set("cssText", css)
		el.Call("appendChild", line)
	}
	paint(el, p)

	parent := d.document.Get("body")
	if !parent.Truthy() {
		parent = d.document.Get("documentElement")
	}
	parent.Call("appendChild", el)

	d.mu.Lock()
	d.popups[p.ID] = el
	d.mu.Unlock()

	// Let the initial style apply so the transition runs.
	var show js.Func
	show = js.FuncOf(func(this js.Value, args []js.Value) any {
		el.Get("style").Set("opacity", "1")
		el.Get("style").Set("transform", "translateY(0)")
		show.Release()
		return nil
	})
	d.window.Call("setTimeout", show, 10)
	return nil
}

func (d *domHost) Update(p overlay.Popup) error {
	el, ok := d.lookup(p.ID)
	if !ok {
		return fmt.Errorf("popup %d not in document", p.ID)
	}
	paint(el, p)
	return nil
}

func (d *domHost) FadeOut(id uint64) error {
	el, ok := d.lookup(id)
	if !ok {
		return fmt.Errorf("popup %d not in document", id)
	}
	el.Get("style").Set("opacity", "0")
	el.Get("style").Set("transform", "translateY(-10px)")
	return nil
}

func (d *domHost) Remove(id uint64) error {
	d.mu.Lock()
	el, ok := d.popups[id]
	delete(d.popups, id)
	d.mu.Unlock()

	if ok {
		el.Call("remove")
	}
	return nil
}

func (d *domHost) lookup(id uint64) (js.Value, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	el, ok := d.popups[id]
	return el, ok
}

func paint(el js.Value, p overlay.Popup) {
	style := el.Get("style")
	style.Set("top", strconv.FormatFloat(p.Top, 'f', -1, 64)+"px")
	style.Set("left", strconv.FormatFloat(p.Left, 'f', -1, 64)+"px")

	children := el.Get("children")
	children.Index(0).Set("textContent", p.Original)
	children.Index(1).Set("textContent", p.Status)
	children.Index(2).Set("textContent", p.Instruction)

	status := children.Index(1).Get("style")
	switch p.State.Phase {
	case overlay.PhaseResolved:
		status.Set("color", "#2c5aa0")
		status.Set("fontStyle", "normal")
	case overlay.PhaseFailed:
		status.Set("color", "#e74c3c")
		status.Set("fontStyle", "italic")
	default:
		status.Set("color", "#666")
		status.Set("fontStyle", "italic")
	}
}
