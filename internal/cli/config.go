package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"codeberg.org/snonux/glossa/internal/api"
	"codeberg.org/snonux/glossa/internal/highlighter"
	"codeberg.org/snonux/glossa/internal/overlay"
	"codeberg.org/snonux/glossa/internal/selection"
)

// RequestTimeout bounds one-shot CLI requests.
const RequestTimeout = 15 * time.Second

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".glossa" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".glossa")
	}

	setDefaults()

	// Environment variables, GLOSSA_BACKEND_URL for backend.url
	viper.SetEnvPrefix("GLOSSA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setDefaults() {
	o := overlay.DefaultConfig()
	state := DefaultStateDir()

	viper.SetDefault("backend.url", api.DefaultBaseURL)
	viper.SetDefault("identity.db", filepath.Join(state, "identity.db"))
	viper.SetDefault("log.level", "info")
	viper.SetDefault("overlay.save_key", o.SaveKey)
	viper.SetDefault("overlay.locale", o.Locale)
	viper.SetDefault("overlay.vertical_offset", o.VerticalOffset)
	viper.SetDefault("overlay.fade", o.FadeDuration)
	viper.SetDefault("overlay.timeout", o.RequestTimeout)
	viper.SetDefault("overlay.settle", selection.DefaultSettleDelay)
	viper.SetDefault("browser.stealth", true)
	viper.SetDefault("server.addr", ":8000")
	viper.SetDefault("server.db", filepath.Join(state, "vocab.db"))
	viper.SetDefault("server.provider", "openai")
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("server.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("server.gemini_key")
}

// BackendURL is the base URL of the translation backend.
func BackendURL() string {
	if u := viper.GetString("backend.url"); u != "" {
		return u
	}
	return api.DefaultBaseURL
}

// IdentityDB is the path of the shared identity database.
func IdentityDB() string {
	if p := viper.GetString("identity.db"); p != "" {
		return p
	}
	return filepath.Join(DefaultStateDir(), "identity.db")
}

// VocabDB is the path of the vocabulary database.
func VocabDB() string {
	if p := viper.GetString("server.db"); p != "" {
		return p
	}
	return filepath.Join(DefaultStateDir(), "vocab.db")
}

// OverlayConfig reads the overlay section. Unset or invalid values keep
// their defaults.
func OverlayConfig() overlay.Config {
	cfg := overlay.DefaultConfig()
	if v := viper.GetString("overlay.save_key"); v != "" {
		cfg.SaveKey = v
	}
	if v := viper.GetString("overlay.locale"); v != "" {
		cfg.Locale = v
	}
	if v := viper.GetFloat64("overlay.vertical_offset"); v != 0 {
		cfg.VerticalOffset = v
	}
	if v := viper.GetDuration("overlay.fade"); v > 0 {
		cfg.FadeDuration = v
	}
	if v := viper.GetDuration("overlay.timeout"); v > 0 {
		cfg.RequestTimeout = v
	}
	return cfg
}

// HighlighterConfig reads the pipeline configuration.
func HighlighterConfig() highlighter.Config {
	cfg := highlighter.DefaultConfig()
	cfg.Overlay = OverlayConfig()
	if viper.IsSet("overlay.settle") {
		if v := viper.GetDuration("overlay.settle"); v >= 0 {
			cfg.SettleDelay = v
		}
	}
	return cfg
}

// ParseLevel maps a level name to a slog level. Unknown names are info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewLogger returns a text logger writing to w at the configured level.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(viper.GetString("log.level")),
	}))
}

// BrowserSettings controls how the browse command reaches Chrome.
type BrowserSettings struct {
	Remote   string
	Headless bool
	Stealth  bool
}

// Browser reads the browser section.
func Browser() BrowserSettings {
	return BrowserSettings{
		Remote:   viper.GetString("browser.remote"),
		Headless: viper.GetBool("browser.headless"),
		Stealth:  viper.GetBool("browser.stealth"),
	}
}

// ServerAddr is the backend listen address.
func ServerAddr() string {
	if a := viper.GetString("server.addr"); a != "" {
		return a
	}
	return ":8000"
}

// ProviderName is the configured translation provider.
func ProviderName() string {
	if p := viper.GetString("server.provider"); p != "" {
		return p
	}
	return "openai"
}
