package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrInputLength is returned when the submitted text is outside the
	// accepted length range.
	ErrInputLength = errors.New("input text length out of range")

	// ErrMalformedResponse is returned when the provider content is not the
	// expected flashcards document.
	ErrMalformedResponse = errors.New("malformed flashcards response")

	// ErrValidation is returned when any item of a batch violates a flashcard
	// constraint. The whole batch is rejected.
	ErrValidation = errors.New("flashcard batch failed validation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
