package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/phrazzld/scry-gen/internal/metrics"
	"github.com/phrazzld/scry-gen/internal/platform/logger"
	"github.com/phrazzld/scry-gen/internal/redact"
	openai "github.com/sashabaranov/go-openai"
)

// Client sends chat completion requests to the configured provider.
type Client struct {
	cfg    Config
	api    *openai.Client
	clock  clockwork.Clock
	logger *slog.Logger
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	clock      clockwork.Clock
	httpClient *http.Client
}

// WithClock replaces the real clock used for retry waits.
func WithClock(clock clockwork.Clock) Option {
	return func(o *clientOptions) { o.clock = clock }
}

// WithHTTPClient replaces the HTTP client used for provider calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config, log *slog.Logger, opts ...Option) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", ErrConfiguration)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", ErrConfiguration)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("%w: base URL cannot be empty", ErrConfiguration)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrConfiguration)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	o := clientOptions{clock: clockwork.NewRealClock(), httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(&o)
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	apiCfg.HTTPClient = o.httpClient

	return &Client{
		cfg:    cfg,
		api:    openai.NewClientWithConfig(apiCfg),
		clock:  o.clock,
		logger: log.With("component", "llm_client"),
	}, nil
}

// SendChat sends one system and one user message and returns the first
// choice's content. Transient failures are retried up to MaxAttempts times,
// waiting BaseDelay·2^(n-2) before attempt n.
func (c *Client) SendChat(
	ctx context.Context,
	systemPrompt, userPrompt string,
	overrides *Overrides,
) (*ChatResult, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: system prompt cannot be empty", ErrConfiguration)
	}
	if strings.TrimSpace(userPrompt) == "" {
		return nil, fmt.Errorf("%w: user prompt cannot be empty", ErrConfiguration)
	}

	req := c.buildRequest(systemPrompt, userPrompt, overrides)
	log := logger.FromContextOrDefault(ctx, c.logger)

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.cfg.BaseDelay << (attempt - 2)
			log.InfoContext(ctx, "retrying provider call after delay",
				"attempt", attempt,
				"delay_ms", delay.Milliseconds())

			select {
			case <-c.clock.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("provider call cancelled during retry delay: %w", ctx.Err())
			}
		}

		log.DebugContext(ctx, "calling provider",
			"attempt", attempt,
			"max_attempts", c.cfg.MaxAttempts,
			"model", req.Model)

		result, err := c.attempt(ctx, req)
		if err == nil {
			metrics.ProviderAttempts.WithLabelValues("success").Inc()
			log.InfoContext(ctx, "provider call succeeded", "attempt", attempt, "model", result.Model)
			return result, nil
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("provider call cancelled: %w", ctx.Err())
		}

		metrics.ProviderAttempts.WithLabelValues(outcomeLabel(err)).Inc()
		lastErr = err

		if !IsRetryable(err) {
			log.WarnContext(ctx, "permanent provider error, not retrying",
				"attempt", attempt,
				"error", redact.Error(err))
			return nil, err
		}

		log.WarnContext(ctx, "transient provider error",
			"attempt", attempt,
			"error", redact.Error(err))
	}

	log.WarnContext(ctx, "maximum provider attempts reached", "max_attempts", c.cfg.MaxAttempts)
	return nil, lastErr
}

func (c *Client) buildRequest(systemPrompt, userPrompt string, o *Overrides) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		TopP:        c.cfg.TopP,
	}
	if o == nil {
		return req
	}

	if o.Model != "" {
		req.Model = o.Model
	}
	if o.Temperature != nil {
		req.Temperature = *o.Temperature
	}
	if o.MaxTokens != nil {
		req.MaxTokens = *o.MaxTokens
	}
	if o.TopP != nil {
		req.TopP = *o.TopP
	}
	if rf := o.ResponseFormat; rf != nil {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   rf.Name,
				Schema: rf.Schema,
				Strict: rf.Strict,
			},
		}
	}
	return req
}

// attempt performs one bounded call and maps every failure onto a sentinel.
func (c *Client) attempt(ctx context.Context, req openai.ChatCompletionRequest) (*ChatResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	start := c.clock.Now()
	resp, err := c.api.CreateChatCompletion(attemptCtx, req)
	metrics.ProviderAttemptDuration.Observe(c.clock.Since(start).Seconds())

	if err != nil {
		if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: no response within %s", ErrTimeout, c.cfg.RequestTimeout)
		}
		return nil, classifyError(err)
	}

	return validateResponse(resp)
}

func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return NewHTTPError(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return NewHTTPError(reqErr.HTTPStatusCode, msg)
	}

	// Transport failures surface as *url.Error from net/http.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: response body is not valid JSON: %v", ErrInvalidResponse, err)
	}

	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func validateResponse(resp openai.ChatCompletionResponse) (*ChatResult, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: response has no choices", ErrInvalidResponse)
	}
	for i, choice := range resp.Choices {
		if choice.Message.Content == "" {
			return nil, fmt.Errorf("%w: choice %d has no message content", ErrInvalidResponse, i)
		}
	}

	result := &ChatResult{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
	}
	if resp.Usage.TotalTokens > 0 || resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
		result.Usage = &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return result, nil
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrRateLimit):
		return "rate_limit"
	case errors.Is(err, ErrProvider):
		return "provider"
	case errors.Is(err, ErrClient):
		return "client"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid_response"
	default:
		return "network"
	}
}
