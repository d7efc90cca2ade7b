// Package server is the reference HTTP backend the overlay talks to. It
// translates selections with the configured provider, using each user's
// language preferences, and stores saved words in the vocabulary database.
package server
