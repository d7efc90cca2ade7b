// Package identity provides the shared record of the logged-in user.
// Every execution context (CLI, browser host, extension) reads and writes
// the same persisted record; a failed read always degrades to guest.
package identity
