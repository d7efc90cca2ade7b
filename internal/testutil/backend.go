package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Call is one request received by a Backend.
type Call struct {
	Method string
	Path   string
	Body   []byte
}

// Decode unmarshals the request body into v.
func (c Call) Decode(v any) error {
	return json.Unmarshal(c.Body, v)
}

// Backend is a fake translation backend recording every request. By
// default /translate answers "mock translation of <text>" and /highlight
// acknowledges the word.
type Backend struct {
	srv *httptest.Server

	mu           sync.Mutex
	calls        []Call
	handlers     map[string]http.HandlerFunc
	translations map[string]string
}

// NewBackend starts a fake backend that is closed with the test.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		handlers:     make(map[string]http.HandlerFunc),
		translations: make(map[string]string),
	}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

// URL returns the base URL of the backend.
func (b *Backend) URL() string {
	return b.srv.URL
}

// Handle overrides the handler for path.
func (b *Backend) Handle(path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[path] = h
}

// SetTranslation makes /translate answer translated for text.
func (b *Backend) SetTranslation(text, translated string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.translations[text] = translated
}

// Calls returns every request received so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallsTo returns the requests received for path.
func (b *Backend) CallsTo(path string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.calls = append(b.calls, Call{Method: r.Method, Path: r.URL.Path, Body: body})
	h := b.handlers[r.URL.Path]
	b.mu.Unlock()

	if h != nil {
		h(w, r)
		return
	}

	switch r.URL.Path {
	case "/translate":
		b.translate(w, body)
	case "/highlight":
		b.highlight(w, body)
	default:
		RespondJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}
}

func (b *Backend) translate(w http.ResponseWriter, body []byte) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		RespondJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	translated, ok := b.translations[req.Text]
	b.mu.Unlock()
	if !ok {
		translated = fmt.Sprintf("mock translation of %s", req.Text)
	}

	RespondJSON(w, http.StatusOK, map[string]string{
		"source_language": "auto",
		"target_language": "English",
		"translated_text": translated,
	})
}

func (b *Backend) highlight(w http.ResponseWriter, body []byte) {
	var req struct {
		Highlight string `json:"highlight"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		RespondJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"user_data": map[string]any{
			"source_language":   "auto",
			"target_language":   "English",
			"highlighted_words": []string{req.Highlight},
		},
	})
}

// RespondJSON writes v as a JSON response.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
