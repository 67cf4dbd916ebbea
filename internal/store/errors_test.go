package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "ErrGenerationNotFound", err: ErrGenerationNotFound, expected: true},
		{name: "ErrGenerationLogNotFound", err: ErrGenerationLogNotFound, expected: true},
		{
			name:     "wrapped ErrFlashcardNotFound",
			err:      fmt.Errorf("failed to load card: %w", ErrFlashcardNotFound),
			expected: true,
		},
		{
			name:     "store error around not found",
			err:      NewStoreError("flashcard", "update", "no row", ErrFlashcardNotFound),
			expected: true,
		},
		{name: "duplicate", err: ErrDuplicate, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDuplicateError(fmt.Errorf("%w: generation log", ErrDuplicate)))
	assert.False(t, IsDuplicateError(ErrNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewStoreError("generation", "create", "insert failed", cause)

	assert.Equal(t, "create operation on generation failed: insert failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("flashcard", "delete", "no rows", nil)
	assert.Equal(t, "delete operation on flashcard failed: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestEntityErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	assert.NotErrorIs(t, ErrGenerationNotFound, ErrFlashcardNotFound)
	assert.NotErrorIs(t, ErrFlashcardNotFound, ErrGenerationLogNotFound)
}
