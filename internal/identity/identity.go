package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// CurrentUserKey is the record name under which every store keeps the
// logged-in user.
const CurrentUserKey = "currentUser"

// GuestID is the user id sent with saved highlights when nobody is
// logged in.
const GuestID = "chrome_extension_user"

// readTimeout bounds how long Current waits for a store.
const readTimeout = 250 * time.Millisecond

// ErrUnavailable is returned by stores that cannot be reached.
var ErrUnavailable = errors.New("identity store unavailable")

// ErrInvalidUser is returned when writing a user without an id.
var ErrInvalidUser = errors.New("user id must not be empty")

// User is the authenticated user shared between execution contexts.
type User struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
}

// Validate checks that the user can be stored.
func (u User) Validate() error {
	if strings.TrimSpace(u.UserID) == "" {
		return ErrInvalidUser
	}
	return nil
}

// Store is a persisted record of the current user, readable and writable
// from several processes. Writes are last-write-wins.
type Store interface {
	// Get returns the current user, or nil when nobody is logged in.
	Get(ctx context.Context) (*User, error)
	Set(ctx context.Context, u User) error
	Clear(ctx context.Context) error
}

// Current reads the user from s and degrades to guest (nil) on any
// failure. It never blocks longer than a short read timeout.
func Current(ctx context.Context, s Store, logger *slog.Logger) *User {
	if s == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	u, err := s.Get(ctx)
	if err != nil {
		logger.Warn("identity unavailable, continuing as guest", "error", err)
		return nil
	}
	if u == nil || strings.TrimSpace(u.UserID) == "" {
		return nil
	}
	return u
}

// IDOrGuest returns the user's id, or GuestID for a nil user.
func IDOrGuest(u *User) string {
	if u == nil {
		return GuestID
	}
	return u.UserID
}

// IDOrEmpty returns the user's id, or "" for a nil user.
func IDOrEmpty(u *User) string {
	if u == nil {
		return ""
	}
	return u.UserID
}
