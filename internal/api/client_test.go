package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func TestClient_Translate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/translate" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("Invalid request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"source_language":"Spanish","target_language":"English","translated_text":"cat"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	tr, err := c.Translate(context.Background(), "gato", "alice")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if tr.TranslatedText != "cat" || tr.SourceLanguage != "Spanish" || tr.TargetLanguage != "English" {
		t.Errorf("Unexpected translation %+v", tr)
	}
	if got["text"] != "gato" || got["user_id"] != "alice" {
		t.Errorf("Unexpected request payload %v", got)
	}
}

func TestClient_TranslateGuestSendsNull(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		raw = string(body)
		_, _ = w.Write([]byte(`{"translated_text":"dog"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Translate(context.Background(), "perro", ""); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if raw != `{"text":"perro","user_id":null}` {
		t.Errorf("Expected null user_id, got %s", raw)
	}
}

func TestClient_TranslateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"provider down"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Translate(context.Background(), "gato", "")
	if !errors.Is(err, ErrTranslationFailed) {
		t.Fatalf("Expected ErrTranslationFailed, got %v", err)
	}
	if errors.Is(err, ErrPersistenceFailed) {
		t.Error("Translate error must not match ErrPersistenceFailed")
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Status != http.StatusBadGateway {
		t.Errorf("Expected RequestError with status 502, got %v", err)
	}
	var stErr *StatusError
	if !errors.As(err, &stErr) || stErr.Detail != "provider down" {
		t.Errorf("Expected StatusError detail, got %v", err)
	}
}

func TestClient_TranslateMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Translate(context.Background(), "gato", "")
	if !errors.Is(err, ErrTranslationFailed) {
		t.Errorf("Expected ErrTranslationFailed, got %v", err)
	}
}

func TestClient_SaveHighlight(t *testing.T) {
	var got HighlightRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/highlight" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"user_data":{"source_language":"auto","target_language":"Spanish","highlighted_words":["perro"]}}`))
	}))
	defer srv.Close()

	rc, err := NewClient(srv.URL).SaveHighlight(context.Background(), "perro", "alice")
	if err != nil {
		t.Fatalf("SaveHighlight failed: %v", err)
	}
	if !rc.Acknowledged {
		t.Error("Expected receipt to be acknowledged")
	}
	if rc.UserData == nil || len(rc.UserData.HighlightedWords) != 1 || rc.UserData.HighlightedWords[0] != "perro" {
		t.Errorf("Unexpected receipt %+v", rc)
	}
	if got.Highlight != "perro" || got.UserID != "alice" {
		t.Errorf("Unexpected request %+v", got)
	}
}

func TestClient_SaveHighlightEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	rc, err := NewClient(srv.URL).SaveHighlight(context.Background(), "perro", "alice")
	if err != nil {
		t.Fatalf("SaveHighlight failed: %v", err)
	}
	if !rc.Acknowledged {
		t.Error("Expected 204 to be acknowledged")
	}
}

func TestClient_SaveHighlightFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SaveHighlight(context.Background(), "perro", "alice")
	if !errors.Is(err, ErrPersistenceFailed) {
		t.Errorf("Expected ErrPersistenceFailed, got %v", err)
	}
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithBreaker(2, time.Minute))
	for i := 0; i < 2; i++ {
		if _, err := c.Translate(context.Background(), "gato", ""); err == nil {
			t.Fatal("Expected error")
		}
	}

	_, err := c.Translate(context.Background(), "gato", "")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected open breaker, got %v", err)
	}
	if !errors.Is(err, ErrTranslationFailed) {
		t.Errorf("Open breaker must still match ErrTranslationFailed, got %v", err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("Expected 2 backend hits, got %d", n)
	}

	// Highlight endpoint has its own breaker.
	if _, err := c.SaveHighlight(context.Background(), "gato", "alice"); errors.Is(err, gobreaker.ErrOpenState) {
		t.Error("Highlight breaker should still be closed")
	}
}

func TestClient_CancellationDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"translated_text":"cat"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithBreaker(1, time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		_, err := c.Translate(ctx, "gato", "")
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Expected context.Canceled, got %v", err)
		}
	}

	tr, err := c.Translate(context.Background(), "gato", "")
	if err != nil {
		t.Fatalf("Expected breaker to stay closed, got %v", err)
	}
	if tr.TranslatedText != "cat" {
		t.Errorf("Unexpected translation %+v", tr)
	}
}
