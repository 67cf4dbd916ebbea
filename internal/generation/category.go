package generation

import (
	"context"
	"errors"

	"github.com/phrazzld/scry-gen/internal/platform/llm"
	"github.com/phrazzld/scry-gen/internal/store"
)

// Category is the user-facing class of a generation failure.
type Category string

// Failure categories.
const (
	CategoryTimeout     Category = "timeout"
	CategoryRateLimit   Category = "rate_limit"
	CategoryAuth        Category = "auth"
	CategoryNetwork     Category = "network"
	CategoryInputLength Category = "input_length"
	CategoryPersistence Category = "persistence"
	CategoryGeneric     Category = "generic"
)

// Categorize maps an error onto the failure taxonomy.
func Categorize(err error) Category {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputLength):
		return CategoryInputLength
	case errors.Is(err, llm.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.Is(err, llm.ErrRateLimit):
		return CategoryRateLimit
	case errors.Is(err, llm.ErrAuth):
		return CategoryAuth
	case errors.Is(err, llm.ErrNetwork):
		return CategoryNetwork
	case errors.Is(err, store.ErrPersistence):
		return CategoryPersistence
	default:
		return CategoryGeneric
	}
}

// UserMessage returns text safe to show an end user.
func (c Category) UserMessage() string {
	switch c {
	case CategoryTimeout:
		return "The flashcard service took too long to respond. Please try again."
	case CategoryRateLimit:
		return "Too many generation requests right now. Please wait a moment and try again."
	case CategoryAuth:
		return "The flashcard service is not available because of a configuration problem."
	case CategoryNetwork:
		return "Could not reach the flashcard service. Check your connection and try again."
	case CategoryInputLength:
		return "Text must be between 1000 and 10000 characters."
	case CategoryPersistence:
		return "Your request could not be saved. Please try again."
	default:
		return "Flashcard generation failed. Please try again."
	}
}
