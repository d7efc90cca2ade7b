package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"codeberg.org/snonux/glossa/internal/api"
	"codeberg.org/snonux/glossa/internal/identity"
	"codeberg.org/snonux/glossa/internal/translation"
	"codeberg.org/snonux/glossa/internal/vocab"
)

const maxRequestBytes = 64 << 10

// PreferencesRequest is the body of PUT /users/{id}/preferences.
type PreferencesRequest struct {
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
}

// WordsResponse is the body of GET /users/{id}/words.
type WordsResponse struct {
	UserID           string   `json:"user_id"`
	HighlightedWords []string `json:"highlighted_words"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	TotalUsers            int      `json:"total_users"`
	TotalHighlightedWords int      `json:"total_highlighted_words"`
	Users                 []string `json:"users"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "glossa backend is running"})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req api.TranslateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}

	source, target := vocab.DefaultSourceLanguage, vocab.DefaultTargetLanguage
	if req.UserID != nil && strings.TrimSpace(*req.UserID) != "" {
		var err error
		source, target, err = s.store.Preferences(r.Context(), *req.UserID)
		if err != nil {
			s.logger.Error("failed to read preferences", "user", *req.UserID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to read preferences")
			return
		}
	}

	res, err := s.provider.Translate(r.Context(), translation.Request{
		Text:           text,
		SourceLanguage: source,
		TargetLanguage: target,
	})
	if err != nil {
		s.logger.Warn("translation failed", "provider", s.provider.Name(), "error", err)
		writeError(w, http.StatusBadGateway, "translation failed")
		return
	}

	writeJSON(w, http.StatusOK, api.Translation{
		SourceLanguage: res.SourceLanguage,
		TargetLanguage: res.TargetLanguage,
		TranslatedText: res.TranslatedText,
	})
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req api.HighlightRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = identity.GuestID
	}

	p, err := s.store.AddHighlight(r.Context(), userID, req.Highlight)
	if errors.Is(err, vocab.ErrEmptyWord) {
		writeError(w, http.StatusBadRequest, "highlight must not be empty")
		return
	}
	if err != nil {
		s.logger.Error("failed to save highlight", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save highlight")
		return
	}

	s.logger.Info("highlight saved", "user", userID, "highlight", req.Highlight, "words", len(p.Words))
	writeJSON(w, http.StatusOK, api.Receipt{UserData: userData(p)})
}

func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	p, err := s.store.Profile(r.Context(), userID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WordsResponse{UserID: userID, HighlightedWords: p.Words})
}

func (s *Server) handleRemoveWord(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveHighlight(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "word")); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.store.SetLanguages(r.Context(), chi.URLParam(r, "userID"), req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userData(p))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Stats(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		TotalUsers:            st.TotalUsers,
		TotalHighlightedWords: st.TotalWords,
		Users:                 st.Users,
	})
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, vocab.ErrEmptyUser) {
		writeError(w, http.StatusBadRequest, "user id must not be empty")
		return
	}
	s.logger.Error("vocabulary store error", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func userData(p vocab.Profile) *api.UserData {
	return &api.UserData{
		SourceLanguage:   p.SourceLanguage,
		TargetLanguage:   p.TargetLanguage,
		HighlightedWords: p.Words,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, api.ErrorBody{Detail: detail})
}
