package hostrod

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const navigateTimeout = 30 * time.Second

// Config controls how Chrome is started.
type Config struct {
	// RemoteURL connects to an already running Chrome instead of launching one.
	RemoteURL string
	// Headless hides the browser window of a launched Chrome.
	Headless bool
	// Stealth applies the anti-detection patches to every opened page.
	Stealth bool
	Logger  *slog.Logger
}

// Browser is a connected Chrome instance.
type Browser struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
	logger  *slog.Logger
}

// Launch starts Chrome, or connects to cfg.RemoteURL when set.
func Launch(ctx context.Context, cfg Config) (*Browser, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Browser{cfg: cfg, logger: logger}

	var wsURL string
	if cfg.RemoteURL != "" {
		wsURL = cfg.RemoteURL
		logger.Info("connecting to remote browser", "url", wsURL)
	} else {
		l := launcher.New().Context(ctx).Headless(cfg.Headless)
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		wsURL = u
		b.lnch = l
		logger.Info("launched local browser", "url", wsURL, "headless", cfg.Headless)
	}

	rb := rod.New().ControlURL(wsURL)
	if err := rb.Connect(); err != nil {
		b.cleanupLauncher()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	b.browser = rb
	return b, nil
}

// Open creates a tab, installs the bridge and navigates to url. Events
// stop when ctx is done or the page is closed.
func (b *Browser) Open(ctx context.Context, url, saveKey string) (*Page, error) {
	var (
		rp  *rod.Page
		err error
	)
	if b.cfg.Stealth {
		rp, err = stealth.Page(b.browser)
	} else {
		rp, err = b.browser.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("create tab: %w", err)
	}

	p := newPage(ctx, rp, b.logger.With("url", url))
	if err := p.install(saveKey); err != nil {
		_ = rp.Close()
		return nil, err
	}

	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	defer cancel()

	if err := rp.Context(navCtx).Navigate(url); err != nil {
		p.Close()
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := rp.Context(navCtx).WaitLoad(); err != nil {
		b.logger.Warn("wait load timeout", "url", url, "error", err)
	}

	// Documents created before the new-document hook was registered.
	if err := p.injectCurrent(saveKey); err != nil {
		b.logger.Warn("failed to inject bridge into current document", "url", url, "error", err)
	}

	b.logger.Info("page opened", "url", url, "save_key", saveKey)
	return p, nil
}

// Close disconnects from Chrome and stops a launched instance.
func (b *Browser) Close() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	b.cleanupLauncher()
	return err
}

func (b *Browser) cleanupLauncher() {
	if b.lnch != nil {
		b.lnch.Cleanup()
		b.lnch = nil
	}
}
