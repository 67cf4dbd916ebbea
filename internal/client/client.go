package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/api"
	"github.com/phrazzld/scry-gen/internal/api/middleware"
	"github.com/phrazzld/scry-gen/internal/api/shared"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/poll"
)

const defaultTimeout = 15 * time.Second

// ErrInvalidBaseURL is returned by New for a URL without scheme and host.
var ErrInvalidBaseURL = errors.New("base URL must be absolute")

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Category   string
	TraceID    string
}

func (e *APIError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Category, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the API on behalf of one bearer token.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ poll.Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.logger = log
	}
}

// New creates a Client for the API at baseURL, e.g. "http://localhost:8080".
func New(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL:    u,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "api_client")
	return c, nil
}

// CreateGeneration submits text and returns the new generation's id.
func (c *Client) CreateGeneration(ctx context.Context, text string) (uuid.UUID, error) {
	var resp api.InitiateResponse
	if err := c.do(ctx, http.MethodPost, "/api/generations", api.CreateGenerationRequest{InputText: text}, &resp); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(resp.GenerationID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid generation id in response: %w", err)
	}
	return id, nil
}

// GetSnapshot reads the current state of a generation.
func (c *Client) GetSnapshot(ctx context.Context, generationID uuid.UUID) (*domain.GenerationSnapshot, error) {
	var resp api.SnapshotResponse
	if err := c.do(ctx, http.MethodGet, "/api/generations/"+generationID.String(), nil, &resp); err != nil {
		return nil, err
	}
	return snapshotFromResponse(resp)
}

// FetchSnapshot implements poll.Fetcher.
func (c *Client) FetchSnapshot(ctx context.Context, generationID uuid.UUID) (*domain.GenerationSnapshot, error) {
	return c.GetSnapshot(ctx, generationID)
}

// ListProposals returns the flashcards a generation produced.
func (c *Client) ListProposals(ctx context.Context, generationID uuid.UUID) ([]*domain.Flashcard, error) {
	var resp []api.FlashcardResponse
	if err := c.do(ctx, http.MethodGet, "/api/generations/"+generationID.String()+"/flashcards", nil, &resp); err != nil {
		return nil, err
	}
	return flashcardsFromResponse(resp)
}

// UpdateFlashcard commits an edit. Nil fields are left unchanged.
func (c *Client) UpdateFlashcard(ctx context.Context, id uuid.UUID, front, back *string) (*domain.Flashcard, error) {
	var resp api.FlashcardResponse
	body := api.UpdateFlashcardRequest{Front: front, Back: back}
	if err := c.do(ctx, http.MethodPut, "/api/flashcards/"+id.String(), body, &resp); err != nil {
		return nil, err
	}
	return flashcardFromResponse(resp)
}

// DeleteFlashcard removes a flashcard.
func (c *Client) DeleteFlashcard(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/flashcards/"+id.String(), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, TraceID: resp.Header.Get(middleware.TraceHeader)}
		var errBody shared.ErrorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&errBody); err == nil {
			apiErr.Message = errBody.Error
			apiErr.Category = errBody.Category
			if errBody.TraceID != "" {
				apiErr.TraceID = errBody.TraceID
			}
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.logger.Debug("api request failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"trace_id", apiErr.TraceID)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
