package llm

import (
	"encoding/json"
	"time"

	"github.com/phrazzld/scry-gen/internal/config"
)

// Usage is the provider's token accounting, when it reports one.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResult is a validated provider response.
type ChatResult struct {
	Content string
	Usage   *Usage
	Model   string
}

// ResponseFormat asks the provider for output matching a JSON schema.
type ResponseFormat struct {
	Name   string
	Schema json.RawMessage
	Strict bool
}

// Overrides replaces the configured defaults for a single call. Nil fields
// keep the default.
type Overrides struct {
	Model          string
	Temperature    *float32
	MaxTokens      *int
	TopP           *float32
	ResponseFormat *ResponseFormat
}

// Config is the client's resolved configuration.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Temperature    float32
	MaxTokens      int
	TopP           float32
	MaxAttempts    int
	BaseDelay      time.Duration
	RequestTimeout time.Duration
}

// Defaults applied when a Config leaves retry settings unset.
const (
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = 1000 * time.Millisecond
	DefaultRequestTimeout = 60 * time.Second
)

// ConfigFromApp converts the application's LLM settings.
func ConfigFromApp(cfg config.LLMConfig) Config {
	return Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.ModelName,
		Temperature:    float32(cfg.Temperature),
		MaxTokens:      cfg.MaxTokens,
		TopP:           float32(cfg.TopP),
		MaxAttempts:    cfg.MaxAttempts,
		BaseDelay:      time.Duration(cfg.RetryBaseDelayMillis) * time.Millisecond,
		RequestTimeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
	}
}
