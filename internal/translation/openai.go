package translation

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider translates with an OpenAI chat model in JSON mode.
type OpenAIProvider struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI translation provider
func NewOpenAIProvider(config *Config) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIBaseURL != "" {
		clientConfig.BaseURL = config.OpenAIBaseURL
	}

	model := config.OpenAIModel
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIProvider{
		apiKey: config.OpenAIKey,
		model:  model,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Translate translates the request text
func (p *OpenAIProvider) Translate(ctx context.Context, req Request) (Result, error) {
	if p.apiKey == "" {
		return Result{}, fmt.Errorf("OpenAI API key not found")
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(req),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens:   300,
		Temperature: 0.3,
	})
	if err != nil {
		return Result{}, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("no translation returned")
	}

	return parseAnswer(resp.Choices[0].Message.Content, req)
}
