// Package api contains the wire types of the translation backend and the
// HTTP client used by the overlay to translate selections and to persist
// saved words.
package api
