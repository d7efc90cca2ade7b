// Package savetrigger saves the word of the active popup when the save
// key is pressed, then tears the popup down.
package savetrigger
