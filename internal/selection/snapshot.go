package selection

import "strings"

// Rect is the bounding rectangle of a selection range in viewport pixels.
type Rect struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

// Snapshot is the text and position of a selection, captured at the
// moment it was made. It is never modified afterwards.
type Snapshot struct {
	Text   string
	Anchor Rect
}

// KeyEvent is a keyboard event delivered by the host page.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
	Alt   bool

	// Prevented reports whether the default action was cancelled, either
	// by PreventDefault or already by the host before delivery.
	Prevented bool

	// Prevent is called by PreventDefault. Hosts that can cancel the native
	// event synchronously set it; it may be nil.
	Prevent func()
}

// PreventDefault cancels the event's default action in the host.
func (e *KeyEvent) PreventDefault() {
	if e.Prevented {
		return
	}
	e.Prevented = true
	if e.Prevent != nil {
		e.Prevent()
	}
}

// IsSelectAll reports whether the event is the platform select-all
// combination (Ctrl+A or Cmd+A).
func IsSelectAll(ev KeyEvent) bool {
	return (ev.Ctrl || ev.Meta) && strings.EqualFold(ev.Key, "a")
}
