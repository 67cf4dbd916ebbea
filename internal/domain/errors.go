package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is usually wrapped with a more specific message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFlashcardType is returned for a type outside the known set.
	ErrInvalidFlashcardType = errors.New("invalid flashcard type")

	// ErrEmptyFront is returned when a flashcard front is blank after trimming.
	ErrEmptyFront = errors.New("flashcard front cannot be empty")

	// ErrEmptyBack is returned when a flashcard back is blank after trimming.
	ErrEmptyBack = errors.New("flashcard back cannot be empty")

	// ErrFrontTooLong is returned when a flashcard front exceeds MaxFrontChars.
	ErrFrontTooLong = errors.New("flashcard front is too long")

	// ErrBackTooLong is returned when a flashcard back exceeds MaxBackChars.
	ErrBackTooLong = errors.New("flashcard back is too long")

	// ErrEmptyUserID is returned when an entity is missing its owner.
	ErrEmptyUserID = errors.New("user ID cannot be empty")
)
