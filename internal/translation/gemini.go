package translation

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider translates with a Gemini model.
type GeminiProvider struct {
	model  string
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini translation provider
func NewGeminiProvider(ctx context.Context, config *Config) (*GeminiProvider, error) {
	if config.GeminiKey == "" {
		return nil, fmt.Errorf("Gemini API key not found")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.GeminiModel
	if model == "" {
		model = DefaultProviderConfig().GeminiModel
	}

	return &GeminiProvider{model: model, client: client}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Translate translates the request text
func (p *GeminiProvider) Translate(ctx context.Context, req Request) (Result, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(buildPrompt(req)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr[float32](0.3),
		})
	if err != nil {
		return Result{}, fmt.Errorf("Gemini API error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return Result{}, fmt.Errorf("no translation returned")
	}
	return parseAnswer(text, req)
}
