// Package hostrod runs the highlighter pipeline against a real Chrome
// page driven over the DevTools protocol.
//
// A small bridge script is evaluated in every document of the page. It
// renders popups on request and forwards pointer and keyboard events back
// to Go through a runtime binding. Page implements both the selection
// source and the popup document the pipeline needs, and its Events
// channel feeds highlighter.Run.
package hostrod
