package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/glossa/internal/anki"
	"codeberg.org/snonux/glossa/internal/api"
	"codeberg.org/snonux/glossa/internal/archive"
	"codeberg.org/snonux/glossa/internal/batch"
	"codeberg.org/snonux/glossa/internal/cli"
	"codeberg.org/snonux/glossa/internal/highlighter"
	"codeberg.org/snonux/glossa/internal/hostrod"
	"codeberg.org/snonux/glossa/internal/identity"
	"codeberg.org/snonux/glossa/internal/identity/sqlitestore"
	"codeberg.org/snonux/glossa/internal/models"
	"codeberg.org/snonux/glossa/internal/server"
	"codeberg.org/snonux/glossa/internal/translation"
	"codeberg.org/snonux/glossa/internal/vocab"
)

// Processor runs the glossa subcommands
type Processor struct {
	flags  *cli.Flags
	logger *slog.Logger
	out    io.Writer
}

// NewProcessor creates a new command processor
func NewProcessor(flags *cli.Flags, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		flags:  flags,
		logger: logger,
		out:    os.Stdout,
	}
}

// SetOutput redirects user-facing output.
func (p *Processor) SetOutput(w io.Writer) {
	p.out = w
}

// SetLogger replaces the logger once the configuration is loaded.
func (p *Processor) SetLogger(l *slog.Logger) {
	if l != nil {
		p.logger = l
	}
}

// Handlers returns the subcommand actions.
func (p *Processor) Handlers() cli.Handlers {
	return cli.Handlers{
		Browse:       p.Browse,
		Serve:        p.Serve,
		Translate:    p.Translate,
		UserShow:     p.ShowUser,
		UserSet:      p.SetUser,
		UserClear:    p.ClearUser,
		VocabList:    p.ListVocab,
		VocabExport:  p.ExportVocab,
		VocabImport:  p.ImportVocab,
		VocabArchive: p.ArchiveVocab,
	}
}

func (p *Processor) client() *api.Client {
	return api.NewClient(cli.BackendURL(), api.WithLogger(p.logger.With("component", "api")))
}

type identityStore interface {
	identity.Store
	Close() error
}

// openIdentity opens the shared identity store. A .json path selects the
// plain file store, anything else the SQLite one.
func (p *Processor) openIdentity() (identityStore, error) {
	path := cli.IdentityDB()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return identity.NewFileStore(path), nil
	}
	ids, err := sqlitestore.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open identity store: %w", err)
	}
	return ids, nil
}

// Browse opens args[0] in Chrome with the overlay attached and runs until
// ctx is cancelled.
func (p *Processor) Browse(ctx context.Context, args []string) error {
	url := args[0]
	cfg := cli.HighlighterConfig()
	bs := cli.Browser()

	ids, err := p.openIdentity()
	if err != nil {
		return err
	}
	defer ids.Close()

	browser, err := hostrod.Launch(ctx, hostrod.Config{
		RemoteURL: bs.Remote,
		Headless:  bs.Headless,
		Stealth:   bs.Stealth,
		Logger:    p.logger.With("component", "browser"),
	})
	if err != nil {
		return err
	}
	defer browser.Close()

	page, err := browser.Open(ctx, url, cfg.Overlay.SaveKey)
	if err != nil {
		return err
	}
	defer page.Close()

	h := highlighter.New(page, p.client(), ids,
		highlighter.WithConfig(cfg),
		highlighter.WithLogger(p.logger))
	defer h.Close()

	user := identity.Current(ctx, ids, p.logger)
	fmt.Fprintf(p.out, "Watching %s as %s\n", url, identity.IDOrGuest(user))
	fmt.Fprintf(p.out, "Select text to translate it, press %s to save it. Ctrl+C stops.\n", cfg.Overlay.SaveKey)

	err = h.Run(ctx, page.Events())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Serve runs the reference backend until ctx is cancelled.
func (p *Processor) Serve(ctx context.Context, args []string) error {
	// Handle --list-models flag
	if p.flags.ListModels {
		lister := models.NewLister(cli.GetOpenAIKey(), "")
		return lister.ListAvailableModels(ctx, p.out)
	}

	store, err := vocab.Open(cli.VocabDB())
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := translation.DefaultProviderConfig()
	cfg.Provider = cli.ProviderName()
	cfg.OpenAIKey = cli.GetOpenAIKey()
	cfg.GeminiKey = cli.GetGeminiKey()
	cfg.Logger = p.logger.With("component", "translation")

	provider, err := translation.NewProvider(ctx, cfg)
	if err != nil {
		return err
	}

	srv := server.New(translation.NewCachedProvider(provider, translation.NewCache()), store,
		p.logger.With("component", "server"))

	fmt.Fprintf(p.out, "Serving on %s with %s, vocabulary in %s\n", cli.ServerAddr(), provider.Name(), store.Path())
	return srv.ListenAndServe(ctx, cli.ServerAddr())
}

// Translate translates the joined args through the backend as the
// current user.
func (p *Processor) Translate(ctx context.Context, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return fmt.Errorf("nothing to translate")
	}

	var user *identity.User
	if ids, err := p.openIdentity(); err != nil {
		p.logger.Warn("continuing as guest", "error", err)
	} else {
		user = identity.Current(ctx, ids, p.logger)
		ids.Close()
	}

	ctx, cancel := context.WithTimeout(ctx, cli.RequestTimeout)
	defer cancel()

	res, err := p.client().Translate(ctx, text, identity.IDOrEmpty(user))
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "%s\n", res.TranslatedText)
	fmt.Fprintf(p.out, "  %s -> %s\n", res.SourceLanguage, res.TargetLanguage)
	return nil
}

// ShowUser prints the current user.
func (p *Processor) ShowUser(ctx context.Context, args []string) error {
	ids, err := p.openIdentity()
	if err != nil {
		return err
	}
	defer ids.Close()

	u, err := ids.Get(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		fmt.Fprintf(p.out, "Not logged in, words are saved as %s\n", identity.GuestID)
		return nil
	}
	if u.DisplayName != "" {
		fmt.Fprintf(p.out, "Logged in as %s (%s)\n", u.UserID, u.DisplayName)
		return nil
	}
	fmt.Fprintf(p.out, "Logged in as %s\n", u.UserID)
	return nil
}

// SetUser logs in as args[0].
func (p *Processor) SetUser(ctx context.Context, args []string) error {
	ids, err := p.openIdentity()
	if err != nil {
		return err
	}
	defer ids.Close()

	u := identity.User{UserID: strings.TrimSpace(args[0]), DisplayName: p.flags.DisplayName}
	if err := ids.Set(ctx, u); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Logged in as %s\n", u.UserID)
	return nil
}

// ClearUser logs out.
func (p *Processor) ClearUser(ctx context.Context, args []string) error {
	ids, err := p.openIdentity()
	if err != nil {
		return err
	}
	defer ids.Close()

	if err := ids.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Logged out, words are saved as %s\n", identity.GuestID)
	return nil
}

// ListVocab prints the saved words of one user, or of every user.
func (p *Processor) ListVocab(ctx context.Context, args []string) error {
	path := cli.VocabDB()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(p.out, "No vocabulary database at %s\n", path)
		return nil
	}

	store, err := vocab.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	users := []string{p.flags.User}
	if p.flags.User == "" {
		if users, err = store.Users(ctx); err != nil {
			return err
		}
	}

	for _, user := range users {
		words, err := store.Words(ctx, user)
		if err != nil {
			return err
		}
		fmt.Fprintf(p.out, "%s (%d)\n", user, len(words))
		for _, w := range words {
			fmt.Fprintf(p.out, "  %s\n", w)
		}
	}
	return nil
}

// ExportVocab writes the saved words as an Anki import file. With
// --translate the back of each card is filled in by the backend, using the
// owner's language preferences.
func (p *Processor) ExportVocab(ctx context.Context, args []string) error {
	store, err := vocab.Open(cli.VocabDB())
	if err != nil {
		return err
	}
	defer store.Close()

	users := []string{p.flags.User}
	if p.flags.User == "" {
		if users, err = store.Users(ctx); err != nil {
			return err
		}
	}

	gen := anki.NewGenerator(&anki.GeneratorOptions{
		OutputPath:     p.flags.Output,
		DeckName:       p.flags.DeckName,
		IncludeHeaders: true,
	})

	var client *api.Client
	if p.flags.TranslateCards {
		client = p.client()
	}

	for _, user := range users {
		words, err := store.Words(ctx, user)
		if err != nil {
			return err
		}
		for _, word := range words {
			card := anki.Card{Word: word, Tags: []string{"glossa", user}}
			if client != nil {
				card.Translation = p.translateCard(ctx, client, word, user)
			}
			gen.AddCard(card)
		}
	}

	if err := gen.GenerateCSV(); err != nil {
		return err
	}

	total, translated := gen.Stats()
	fmt.Fprintf(p.out, "Exported %d words (%d translated) to %s\n", total, translated, p.flags.Output)
	return nil
}

func (p *Processor) translateCard(ctx context.Context, client *api.Client, word, user string) string {
	if user == identity.GuestID {
		user = ""
	}

	ctx, cancel := context.WithTimeout(ctx, cli.RequestTimeout)
	defer cancel()

	res, err := client.Translate(ctx, word, user)
	if err != nil {
		p.logger.Warn("failed to translate card", "word", word, "error", err)
		return ""
	}
	return res.TranslatedText
}

// ImportVocab adds the words of the list in args[0] for --user, or for
// the current user when it is not set.
func (p *Processor) ImportVocab(ctx context.Context, args []string) error {
	entries, err := batch.ReadWordFile(args[0])
	if err != nil {
		return err
	}

	user := p.flags.User
	if user == "" {
		if ids, err := p.openIdentity(); err != nil {
			p.logger.Warn("importing as guest", "error", err)
		} else {
			user = identity.IDOrGuest(identity.Current(ctx, ids, p.logger))
			ids.Close()
		}
	}
	if user == "" {
		user = identity.GuestID
	}

	store, err := vocab.Open(cli.VocabDB())
	if err != nil {
		return err
	}
	defer store.Close()

	before, err := store.Words(ctx, user)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if _, err := store.AddHighlight(ctx, user, entry.Word); err != nil {
			return fmt.Errorf("failed to import %q: %w", entry.Word, err)
		}
	}

	after, err := store.Words(ctx, user)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Imported %d of %d words for %s\n", len(after)-len(before), len(entries), user)
	return nil
}

// ArchiveVocab moves the vocabulary database into its archive directory.
func (p *Processor) ArchiveVocab(ctx context.Context, args []string) error {
	dest, err := archive.ArchiveDatabase(cli.VocabDB())
	if err != nil {
		return fmt.Errorf("failed to archive vocabulary: %w", err)
	}
	fmt.Fprintf(p.out, "Archived vocabulary to %s\n", dest)
	return nil
}
