package translation

import (
	"context"
	"fmt"
	"log/slog"
)

// Request is a text to translate together with the user's language pair.
// An empty or "auto" source language lets the provider detect it.
type Request struct {
	Text           string
	SourceLanguage string
	TargetLanguage string
}

// Result is a finished translation.
type Result struct {
	SourceLanguage string
	TargetLanguage string
	TranslatedText string
}

// Provider defines the interface for translation providers
type Provider interface {
	// Translate translates req.Text into req.TargetLanguage
	Translate(ctx context.Context, req Request) (Result, error)

	// Name returns the provider name
	Name() string
}

// Config holds configuration for translation providers
type Config struct {
	Provider string // Provider name: "openai" or "gemini"

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string // Optional, for OpenAI-compatible endpoints

	GeminiKey   string
	GeminiModel string

	// Fallback wraps the primary provider with the other one when both
	// keys are present.
	Fallback bool

	Logger *slog.Logger
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:    "openai",
		OpenAIModel: "gpt-4o-mini",
		GeminiModel: "gemini-2.0-flash",
		Fallback:    true,
	}
}

// NewProvider creates the appropriate translation provider based on configuration
func NewProvider(ctx context.Context, config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	primary, err := newSingleProvider(ctx, config.Provider, config)
	if err != nil {
		return nil, err
	}
	if !config.Fallback {
		return primary, nil
	}

	other := "gemini"
	if config.Provider == "gemini" {
		other = "openai"
	}
	fallback, err := newSingleProvider(ctx, other, config)
	if err != nil {
		// No key for the other provider: run without fallback.
		return primary, nil
	}
	return NewProviderWithFallback(primary, fallback, config.Logger), nil
}

func newSingleProvider(ctx context.Context, name string, config *Config) (Provider, error) {
	switch name {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config), nil

	case "gemini":
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiProvider(ctx, config)

	default:
		return nil, fmt.Errorf("unknown translation provider: %s", name)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	logger   *slog.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Translate tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) Translate(ctx context.Context, req Request) (Result, error) {
	res, err := p.primary.Translate(ctx, req)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return Result{}, err
	}

	p.logger.Warn("primary translation provider failed, falling back",
		"primary", p.primary.Name(), "fallback", p.fallback.Name(), "error", err)

	res, fbErr := p.fallback.Translate(ctx, req)
	if fbErr != nil {
		return Result{}, fmt.Errorf("both providers failed: primary=%v, fallback=%w", err, fbErr)
	}
	return res, nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}
