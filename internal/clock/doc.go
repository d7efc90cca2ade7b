// Package clock abstracts timer scheduling so that the select-all settle
// delay and the popup fade-out can be driven deterministically in tests.
package clock
