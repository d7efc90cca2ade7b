package overlay

import "codeberg.org/snonux/glossa/internal/selection"

// Phase is the translation state of a popup.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseResolved
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseResolved:
		return "resolved"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the phase of the current popup. Text holds the translation
// once the phase is PhaseResolved.
type State struct {
	Phase Phase
	Text  string
}

// Popup is one rendered popup instance as handed to the Document.
type Popup struct {
	// ID is the instance token. It is unique per controller and never reused.
	ID       uint64
	Snapshot selection.Snapshot

	Top  float64
	Left float64

	Original    string
	Status      string
	Instruction string
	State       State
}

// Document renders popups in the host page. Calls are serialized by the
// controller and must not call back into it.
type Document interface {
	// Append inserts a new popup element.
	Append(p Popup) error
	// Update replaces the content of an existing popup element.
	Update(p Popup) error
	// FadeOut starts the exit animation of the element.
	FadeOut(id uint64) error
	// Remove deletes the element. Removing an unknown id is not an error.
	Remove(id uint64) error
}
