package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/glossa/internal"
)

// ErrNoHandler is returned by a subcommand that was built without a handler.
var ErrNoHandler = errors.New("command has no handler")

// HandlerFunc runs one subcommand with its positional arguments.
type HandlerFunc func(ctx context.Context, args []string) error

// Handlers are the actions behind the subcommands.
type Handlers struct {
	Browse       HandlerFunc
	Serve        HandlerFunc
	Translate    HandlerFunc
	UserShow     HandlerFunc
	UserSet      HandlerFunc
	UserClear    HandlerFunc
	VocabList    HandlerFunc
	VocabExport  HandlerFunc
	VocabImport  HandlerFunc
	VocabArchive HandlerFunc
}

// flagKeys maps flag names to their configuration keys.
var flagKeys = map[string]string{
	"backend":     "backend.url",
	"identity-db": "identity.db",
	"log-level":   "log.level",
	"save-key":    "overlay.save_key",
	"locale":      "overlay.locale",
	"headless":    "browser.headless",
	"remote":      "browser.remote",
	"stealth":     "browser.stealth",
	"addr":        "server.addr",
	"db":          "server.db",
	"provider":    "server.provider",
}

// DefaultStateDir is where glossa keeps its databases.
func DefaultStateDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "glossa")
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags, h Handlers) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "glossa",
		Short: "Selection translator and vocabulary collector",
		Long: `glossa translates text you select on a web page and saves the words
you want to keep to your vocabulary.

Examples:
  glossa serve                        # Run the translation backend
  glossa browse https://elpais.com    # Open a page with the overlay attached
  glossa user set alice               # Save words as alice instead of guest
  glossa vocab list --user alice      # Show alice's saved words
  glossa vocab export --translate     # Write an Anki import file`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newBrowseCommand(flags, h.Browse),
		newServeCommand(flags, h.Serve),
		newTranslateCommand(h.Translate),
		newUserCommand(flags, h),
		newVocabCommand(flags, h),
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	defaultIdentityDB := filepath.Join(DefaultStateDir(), "identity.db")

	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.glossa.yaml)")
	cmd.PersistentFlags().StringVar(&flags.BackendURL, "backend", flags.BackendURL, "Translation backend URL")
	cmd.PersistentFlags().StringVar(&flags.IdentityDB, "identity-db", defaultIdentityDB, "Shared identity database")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")

	bindFlagsToViper(cmd)
}

func newBrowseCommand(flags *Flags, run HandlerFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse <url>",
		Short: "Open a page in Chrome with the translation overlay",
		Args:  cobra.ExactArgs(1),
		RunE:  runHandler(run),
	}

	cmd.Flags().BoolVar(&flags.Headless, "headless", false, "Run Chrome without a window")
	cmd.Flags().StringVar(&flags.Remote, "remote", "", "DevTools websocket URL of a running Chrome")
	cmd.Flags().BoolVar(&flags.Stealth, "stealth", flags.Stealth, "Apply anti-detection patches to the page")
	cmd.Flags().StringVar(&flags.SaveKey, "save-key", flags.SaveKey, "Key that saves the selected word")
	cmd.Flags().StringVar(&flags.Locale, "locale", flags.Locale, "Popup language: en, es, fr, de")

	return cmd
}

func newServeCommand(flags *Flags, run HandlerFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the translation and highlight backend",
		Args:  cobra.NoArgs,
		RunE:  runHandler(run),
	}

	cmd.Flags().StringVar(&flags.Addr, "addr", flags.Addr, "Listen address")
	cmd.Flags().StringVar(&flags.DB, "db", filepath.Join(DefaultStateDir(), "vocab.db"), "Vocabulary database")
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Translation provider: openai or gemini")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available OpenAI models for the current API key")

	return cmd
}

func newTranslateCommand(run HandlerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <text>",
		Short: "Translate text through the backend",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runHandler(run),
	}
}

func newUserCommand(flags *Flags, h Handlers) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Show or change the user words are saved for",
	}

	set := &cobra.Command{
		Use:   "set <user-id>",
		Short: "Log in as a user",
		Args:  cobra.ExactArgs(1),
		RunE:  runHandler(h.UserSet),
	}
	set.Flags().StringVar(&flags.DisplayName, "name", "", "Display name")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current user",
			Args:  cobra.NoArgs,
			RunE:  runHandler(h.UserShow),
		},
		set,
		&cobra.Command{
			Use:   "clear",
			Short: "Log out and continue as guest",
			Args:  cobra.NoArgs,
			RunE:  runHandler(h.UserClear),
		},
	)
	return cmd
}

func newVocabCommand(flags *Flags, h Handlers) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Inspect the vocabulary database",
	}
	cmd.PersistentFlags().StringVar(&flags.DB, "db", filepath.Join(DefaultStateDir(), "vocab.db"), "Vocabulary database")

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved words",
		Args:  cobra.NoArgs,
		RunE:  runHandler(h.VocabList),
	}
	list.Flags().StringVar(&flags.User, "user", "", "Only list words of this user")

	export := &cobra.Command{
		Use:   "export",
		Short: "Export saved words as an Anki import file",
		Args:  cobra.NoArgs,
		RunE:  runHandler(h.VocabExport),
	}
	export.Flags().StringVar(&flags.User, "user", "", "Only export words of this user")
	export.Flags().StringVarP(&flags.Output, "output", "o", flags.Output, "Output CSV file")
	export.Flags().StringVar(&flags.DeckName, "deck-name", flags.DeckName, "Anki deck name")
	export.Flags().BoolVar(&flags.TranslateCards, "translate", false, "Fill the back of each card through the backend")

	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Add the words of a word list, one per line",
		Args:  cobra.ExactArgs(1),
		RunE:  runHandler(h.VocabImport),
	}
	imp.Flags().StringVar(&flags.User, "user", "", "Owner of the words (default: current user)")

	cmd.AddCommand(
		list,
		export,
		imp,
		&cobra.Command{
			Use:   "archive",
			Short: "Move the vocabulary database into a timestamped archive",
			Args:  cobra.NoArgs,
			RunE:  runHandler(h.VocabArchive),
		},
	)
	return cmd
}

func runHandler(run HandlerFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if run == nil {
			return ErrNoHandler
		}
		// Subcommands share configuration keys, so only the flags of
		// the command being run are bound.
		bindFlagsToViper(cmd)
		return run(cmd.Context(), args)
	}
}

// bindFlagsToViper binds the command's own flags that have a
// configuration key.
func bindFlagsToViper(cmd *cobra.Command) {
	bind := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			if key, ok := flagKeys[f.Name]; ok {
				viper.BindPFlag(key, f)
			}
		})
	}
	bind(cmd.PersistentFlags())
	bind(cmd.Flags())
}
