package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"codeberg.org/snonux/glossa/internal/translation"
	"codeberg.org/snonux/glossa/internal/vocab"
)

// Vocabulary is the subset of the vocabulary store the handlers use.
type Vocabulary interface {
	Preferences(ctx context.Context, userID string) (source, target string, err error)
	AddHighlight(ctx context.Context, userID, word string) (vocab.Profile, error)
	RemoveHighlight(ctx context.Context, userID, word string) error
	SetLanguages(ctx context.Context, userID, source, target string) (vocab.Profile, error)
	Profile(ctx context.Context, userID string) (vocab.Profile, error)
	DeleteUser(ctx context.Context, userID string) error
	Stats(ctx context.Context) (vocab.Stats, error)
}

const shutdownTimeout = 5 * time.Second

// Server serves the translation and highlight API.
type Server struct {
	router   *chi.Mux
	provider translation.Provider
	store    Vocabulary
	logger   *slog.Logger
}

// New creates a server. logger may be nil.
func New(provider translation.Provider, store Vocabulary, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:   chi.NewRouter(),
		provider: provider,
		store:    store,
		logger:   logger,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(allowAllOrigins)

	s.RegisterHTTP(s.router)
	return s
}

// RegisterHTTP mounts the API routes on r.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Get("/", s.handleRoot)
	r.Post("/translate", s.handleTranslate)
	r.Post("/highlight", s.handleHighlight)
	r.Get("/stats", s.handleStats)

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Delete("/", s.handleDeleteUser)
		r.Get("/words", s.handleWords)
		r.Delete("/words/{word}", s.handleRemoveWord)
		r.Put("/preferences", s.handlePreferences)
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Backend listening", "addr", addr, "provider", s.provider.Name())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Stopping backend")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// allowAllOrigins answers CORS preflights for extension origins.
func allowAllOrigins(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
