package overlay

import "time"

// Config holds the overlay tunables.
type Config struct {
	// VerticalOffset is how far above the selection the popup is placed.
	VerticalOffset float64
	// FadeDuration is how long the exit animation runs before removal.
	FadeDuration time.Duration
	// RequestTimeout turns a hung translation into a failure.
	RequestTimeout time.Duration
	// SaveKey is the key that saves the word, as reported by KeyboardEvent.key.
	SaveKey string
	// Locale selects the popup language.
	Locale string
}

// DefaultConfig returns the overlay defaults.
func DefaultConfig() Config {
	return Config{
		VerticalOffset: 70,
		FadeDuration:   300 * time.Millisecond,
		RequestTimeout: 10 * time.Second,
		SaveKey:        "Shift",
		Locale:         "en",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.VerticalOffset == 0 {
		c.VerticalOffset = d.VerticalOffset
	}
	if c.FadeDuration <= 0 {
		c.FadeDuration = d.FadeDuration
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.SaveKey == "" {
		c.SaveKey = d.SaveKey
	}
	if c.Locale == "" {
		c.Locale = d.Locale
	}
	return c
}
