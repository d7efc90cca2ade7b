// Package vocab stores each user's language preferences and saved words
// in SQLite. The schema is managed with golang-migrate from embedded
// migrations.
package vocab
