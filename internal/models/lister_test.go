package models

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"testing"
)

func TestNewLister(t *testing.T) {
	lister := NewLister("test-api-key", "")

	if lister == nil {
		t.Fatal("NewLister returned nil")
	}

	if lister.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", lister.apiKey)
	}

	if lister.client == nil {
		t.Error("OpenAI client not initialized")
	}
}

func TestTranslationModels_NoAPIKey(t *testing.T) {
	lister := NewLister("", "")

	_, err := lister.TranslationModels(context.Background())
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}

	expectedError := "OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .glossa.yaml"
	if err.Error() != expectedError {
		t.Errorf("Expected error '%s', got: %v", expectedError, err)
	}
}

func TestChatModels(t *testing.T) {
	ids := []string{
		"gpt-4o-mini", "tts-1", "dall-e-3", "gpt-4o-audio-preview", "text-embedding-3-small",
		"gpt-4.1", "o3-mini", "whisper-1", "gpt-4o-realtime-preview", "omni-moderation-latest",
		"gpt-3.5-turbo-instruct", "chatgpt-4o-latest", "babbage-002",
	}

	want := []string{"chatgpt-4o-latest", "gpt-4.1", "gpt-4o-mini", "o3-mini"}
	if got := chatModels(ids); !reflect.DeepEqual(got, want) {
		t.Errorf("chatModels() = %v, want %v", got, want)
	}
}

func TestListAvailableModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"tts-1","object":"model"},{"id":"gpt-4o-mini","object":"model"}]}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	if err := NewLister("k", srv.URL+"/v1").ListAvailableModels(context.Background(), &out); err != nil {
		t.Fatalf("ListAvailableModels failed: %v", err)
	}
	if !strings.Contains(out.String(), "gpt-4o-mini") || strings.Contains(out.String(), "tts-1") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
}

func TestListAvailableModels_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	var out bytes.Buffer
	if err := NewLister(apiKey, "").ListAvailableModels(context.Background(), &out); err != nil {
		t.Errorf("ListAvailableModels failed: %v", err)
	}
}
