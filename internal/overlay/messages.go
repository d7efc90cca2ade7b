package overlay

import (
	"embed"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"codeberg.org/snonux/glossa/internal/identity"
)

//go:embed locales/active.*.toml
var localeFS embed.FS

var localeFiles = []string{
	"locales/active.en.toml",
	"locales/active.es.toml",
	"locales/active.fr.toml",
	"locales/active.de.toml",
}

// Message ids.
const (
	msgTranslating = "PopupTranslating"
	msgFailed      = "PopupFailed"
	msgInstruction = "PopupInstruction"
	msgGuest       = "PopupGuest"
)

// Messages renders the popup strings for one locale.
type Messages struct {
	localizer *i18n.Localizer
	logger    *slog.Logger
}

// NewMessages loads the embedded bundles. Unknown locales fall back to
// English, and missing messages fall back to their id.
func NewMessages(locale string, logger *slog.Logger) *Messages {
	if logger == nil {
		logger = slog.Default()
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, file := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			logger.Warn("failed to load locale file", "file", file, "error", err)
		}
	}

	languages := []string{}
	if locale != "" {
		if tag, err := language.Parse(locale); err == nil {
			languages = append(languages, tag.String())
		} else {
			logger.Warn("unknown locale, using English", "locale", locale)
		}
	}
	languages = append(languages, language.English.String())

	return &Messages{
		localizer: i18n.NewLocalizer(bundle, languages...),
		logger:    logger,
	}
}

// Translating is the placeholder shown while a request is in flight.
func (m *Messages) Translating() string {
	return m.localize(msgTranslating, nil)
}

// Failed is the status shown when translation failed.
func (m *Messages) Failed() string {
	return m.localize(msgFailed, nil)
}

// Instruction tells the user how to save the word and as whom.
func (m *Messages) Instruction(saveKey string, u *identity.User) string {
	who := identity.IDOrEmpty(u)
	if who == "" {
		who = m.localize(msgGuest, nil)
	}
	return m.localize(msgInstruction, map[string]any{
		"Key":  strings.ToLower(saveKey),
		"User": who,
	})
}

func (m *Messages) localize(id string, data map[string]any) string {
	msg, err := m.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		m.logger.Warn("localize failed", "id", id, "error", err)
		return id
	}
	return msg
}
