// Package highlighter wires the selection watcher, the overlay controller
// and the save-trigger listener into one pipeline fed by host page events.
package highlighter
