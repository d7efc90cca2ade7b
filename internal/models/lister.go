package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister. baseURL may be empty for the
// public OpenAI API.
func NewLister(apiKey, baseURL string) *Lister {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
	}
}

// TranslationModels returns the sorted ids of chat models that can serve
// as translation providers.
func (l *Lister) TranslationModels(ctx context.Context) ([]string, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .glossa.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(models.Models))
	for _, model := range models.Models {
		ids = append(ids, model.ID)
	}
	return chatModels(ids), nil
}

// ListAvailableModels prints the translation-capable models to w
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	models, err := l.TranslationModels(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Chat/Translation Models:")
	if len(models) == 0 {
		fmt.Fprintln(w, "  No chat models found")
		return nil
	}
	for _, model := range models {
		fmt.Fprintf(w, "  %s\n", model)
	}
	return nil
}

// chatModels keeps general chat models and drops audio, speech, image,
// embedding and moderation variants.
func chatModels(ids []string) []string {
	excluded := []string{"tts", "audio", "realtime", "transcribe", "search", "dall-e", "image", "embedding", "moderation", "whisper", "instruct"}

	out := []string{}
	for _, id := range ids {
		if !strings.Contains(id, "gpt") && !strings.Contains(id, "chat") && !strings.HasPrefix(id, "o") {
			continue
		}
		skip := false
		for _, ex := range excluded {
			if strings.Contains(id, ex) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
