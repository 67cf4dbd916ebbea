package generation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/phrazzld/scry-gen/internal/platform/llm"
	"github.com/phrazzld/scry-gen/internal/platform/logger"
)

// Result is a validated batch plus what the provider reported about the call.
type Result struct {
	Items      []Item
	TokenCount *int
	Model      *string
}

// Generator defines the interface for generating flashcards from text.
// This interface serves as a boundary between the application core and
// the external language model.
type Generator interface {
	// Generate returns validated flashcard items for text, or an error
	// wrapping one of the llm or generation sentinels.
	Generate(ctx context.Context, text string) (*Result, error)
}

// ChatClient is the subset of llm.Client the generator needs.
type ChatClient interface {
	SendChat(ctx context.Context, systemPrompt, userPrompt string, overrides *llm.Overrides) (*llm.ChatResult, error)
}

// flashcardsSchema constrains provider output to the document Parse expects.
var flashcardsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"flashcards": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"front": {"type": "string"},
					"back": {"type": "string"}
				},
				"required": ["front", "back"],
				"additionalProperties": false
			}
		}
	},
	"required": ["flashcards"],
	"additionalProperties": false
}`)

// LLMGenerator implements Generator on top of a chat client.
type LLMGenerator struct {
	client       ChatClient
	prompts      *PromptBuilder
	strictSchema bool
	logger       *slog.Logger
}

// NewLLMGenerator creates a generator. With strictSchema set the JSON schema
// response format is sent with every request.
func NewLLMGenerator(client ChatClient, prompts *PromptBuilder, strictSchema bool, log *slog.Logger) (*LLMGenerator, error) {
	if client == nil {
		return nil, errors.New("chat client cannot be nil")
	}
	if prompts == nil {
		return nil, errors.New("prompt builder cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &LLMGenerator{
		client:       client,
		prompts:      prompts,
		strictSchema: strictSchema,
		logger:       log.With("component", "llm_generator"),
	}, nil
}

// Generate builds the prompts, calls the provider, then parses and validates
// the returned flashcards.
func (g *LLMGenerator) Generate(ctx context.Context, text string) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	systemPrompt, userPrompt, err := g.prompts.Build(text)
	if err != nil {
		return nil, err
	}

	var overrides *llm.Overrides
	if g.strictSchema {
		overrides = &llm.Overrides{
			ResponseFormat: &llm.ResponseFormat{
				Name:   "flashcards",
				Schema: flashcardsSchema,
				Strict: true,
			},
		}
	}

	chat, err := g.client.SendChat(ctx, systemPrompt, userPrompt, overrides)
	if err != nil {
		return nil, err
	}

	parsed, err := Parse(chat.Content)
	if err != nil {
		log.WarnContext(ctx, "provider returned malformed flashcards", "content_length", len(chat.Content))
		return nil, err
	}

	items, err := ValidateItems(parsed.Flashcards)
	if err != nil {
		return nil, err
	}

	result := &Result{Items: items}
	if chat.Usage != nil {
		tokens := chat.Usage.TotalTokens
		result.TokenCount = &tokens
	}
	if chat.Model != "" {
		model := chat.Model
		result.Model = &model
	}

	log.DebugContext(ctx, "generated flashcards", "count", len(items))
	return result, nil
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, text string) (*Result, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, text string) (*Result, error) {
	return f(ctx, text)
}

var _ Generator = (*LLMGenerator)(nil)
