package cli

import "codeberg.org/snonux/glossa/internal/api"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	BackendURL string
	IdentityDB string
	LogLevel   string

	// Browse flags
	Headless bool
	Remote   string
	Stealth  bool
	SaveKey  string
	Locale   string

	// Serve flags
	Addr       string
	DB         string
	Provider   string
	ListModels bool

	// User and vocab flags
	DisplayName    string
	User           string
	Output         string
	DeckName       string
	TranslateCards bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		BackendURL: api.DefaultBaseURL,
		LogLevel:   "info",
		Stealth:    true,
		SaveKey:    "Shift",
		Locale:     "en",
		Addr:       ":8000",
		Provider:   "openai",
		Output:     "glossa_vocabulary.csv",
		DeckName:   "Glossa Vocabulary",
	}
}
