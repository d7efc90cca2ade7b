// Package overlay implements the popup state machine.
//
// A Controller shows at most one popup at a time. Show tears down whatever
// is on screen, renders the selected text with a loading placeholder and an
// instruction line naming the current user, and starts a translation in the
// background. The result is applied only if the popup it was started for is
// still the active one; anything else is counted as stale and dropped.
//
// Teardown runs in two steps. The popup is released and told to fade, and
// after Config.FadeDuration the element is removed from the document.
//
// Popup strings are localized with go-i18n from the embedded
// locales/active.*.toml bundles.
package overlay
