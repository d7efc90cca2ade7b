package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// DefaultBaseURL is where the backend listens in local setups.
const DefaultBaseURL = "http://localhost:8000"

const maxBodyBytes = 1 << 20

// Client calls the backend's /translate and /highlight endpoints. Each
// endpoint has its own circuit breaker so that a dead backend fails fast.
// Client never panics; every failure is returned as a *RequestError.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	logger      *slog.Logger
	translateCB *gobreaker.CircuitBreaker
	highlightCB *gobreaker.CircuitBreaker
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient       *http.Client
	logger           *slog.Logger
	failureThreshold uint32
	openTimeout      time.Duration
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithBreaker sets how many consecutive failures open a breaker and how
// long it stays open before probing again.
func WithBreaker(failures uint32, openFor time.Duration) Option {
	return func(o *clientOptions) {
		o.failureThreshold = failures
		o.openTimeout = openFor
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	o := &clientOptions{
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		logger:           slog.Default(),
		failureThreshold: 5,
		openTimeout:      30 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.failureThreshold == 0 {
		o.failureThreshold = 1
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: o.httpClient,
		logger:     o.logger,
	}
	c.translateCB = newBreaker("translate", o, c.logger)
	c.highlightCB = newBreaker("highlight", o, c.logger)
	return c
}

func newBreaker(name string, o *clientOptions, logger *slog.Logger) *gobreaker.CircuitBreaker {
	threshold := o.failureThreshold
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     o.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A request abandoned by its caller says nothing about the backend.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("backend circuit breaker changed state",
				"endpoint", name, "from", from.String(), "to", to.String())
		},
	})
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Translate asks the backend to translate text. An empty userID is sent
// as null, which the backend treats as a guest.
func (c *Client) Translate(ctx context.Context, text, userID string) (Translation, error) {
	req := TranslateRequest{Text: text}
	if userID != "" {
		req.UserID = &userID
	}

	var out Translation
	status, err := c.post(ctx, c.translateCB, "/translate", req, &out)
	if err != nil {
		return Translation{}, &RequestError{Op: "translate", Status: status, Err: err, kind: ErrTranslationFailed}
	}
	return out, nil
}

// SaveHighlight stores text in the user's vocabulary.
func (c *Client) SaveHighlight(ctx context.Context, text, userID string) (Receipt, error) {
	req := HighlightRequest{Highlight: text, UserID: userID}

	var out Receipt
	status, err := c.post(ctx, c.highlightCB, "/highlight", req, &out)
	if err != nil {
		return Receipt{}, &RequestError{Op: "highlight", Status: status, Err: err, kind: ErrPersistenceFailed}
	}
	out.Acknowledged = true
	return out, nil
}

func (c *Client) post(ctx context.Context, cb *gobreaker.CircuitBreaker, path string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to encode request: %w", err)
	}

	var status int
	data, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			var eb ErrorBody
			_ = json.Unmarshal(raw, &eb)
			return nil, &StatusError{Code: resp.StatusCode, Detail: eb.Detail}
		}
		return raw, nil
	})
	if err != nil {
		return status, err
	}

	raw, _ := data.([]byte)
	if len(bytes.TrimSpace(raw)) == 0 {
		return status, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return status, fmt.Errorf("failed to decode response: %w", err)
	}
	return status, nil
}
