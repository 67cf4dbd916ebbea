package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// FlashcardType labels the provenance of a flashcard's content.
type FlashcardType string

// Known flashcard types.
const (
	FlashcardTypeManual      FlashcardType = "manual"
	FlashcardTypeAIGenerated FlashcardType = "ai-generated"
	FlashcardTypeAIProposal  FlashcardType = "ai-proposal"
	FlashcardTypeAIEdited    FlashcardType = "ai-edited"
)

// EditTransitionTriggers is the canonical set of pre-edit types that become
// FlashcardTypeAIEdited when a human commits an edit. Cards produced by the
// generation pipeline are stored as ai-proposal; ai-generated is kept in the
// set so rows labelled with the older name follow the same rule.
var EditTransitionTriggers = map[FlashcardType]struct{}{
	FlashcardTypeAIProposal:  {},
	FlashcardTypeAIGenerated: {},
}

// NextType returns the type a flashcard takes after an edit is committed,
// given its type before the edit. Types outside the trigger set are kept.
func NextType(current FlashcardType) FlashcardType {
	if _, ok := EditTransitionTriggers[current]; ok {
		return FlashcardTypeAIEdited
	}
	return current
}

// Valid reports whether t is one of the known flashcard types.
func (t FlashcardType) Valid() bool {
	switch t {
	case FlashcardTypeManual, FlashcardTypeAIGenerated, FlashcardTypeAIProposal, FlashcardTypeAIEdited:
		return true
	default:
		return false
	}
}

// Flashcard is the learning unit: a front (prompt) and a back (answer).
type Flashcard struct {
	ID           uuid.UUID     `json:"id"`
	UserID       uuid.UUID     `json:"user_id"`
	Front        string        `json:"front"`
	Back         string        `json:"back"`
	Type         FlashcardType `json:"type"`
	GenerationID *uuid.UUID    `json:"generation_id,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewManualFlashcard builds a user-authored card. The ID is left for the
// store to assign.
func NewManualFlashcard(userID uuid.UUID, front, back string) (*Flashcard, error) {
	now := time.Now().UTC()
	card := &Flashcard{
		UserID:    userID,
		Front:     strings.TrimSpace(front),
		Back:      strings.TrimSpace(back),
		Type:      FlashcardTypeManual,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}
	return card, nil
}

// NewProposal builds an AI-produced card tied to its generation.
func NewProposal(userID, generationID uuid.UUID, front, back string) (*Flashcard, error) {
	now := time.Now().UTC()
	genID := generationID
	card := &Flashcard{
		UserID:       userID,
		Front:        strings.TrimSpace(front),
		Back:         strings.TrimSpace(back),
		Type:         FlashcardTypeAIProposal,
		GenerationID: &genID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}
	return card, nil
}

// Validate checks ownership, type and content bounds.
func (f *Flashcard) Validate() error {
	if f.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if !f.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFlashcardType, f.Type)
	}
	if err := ValidateFront(f.Front); err != nil {
		return err
	}
	return ValidateBack(f.Back)
}

// ValidateFront checks a front value that has already been trimmed.
func ValidateFront(front string) error {
	if front == "" {
		return ErrEmptyFront
	}
	if n := utf8.RuneCountInString(front); n > MaxFrontChars {
		return fmt.Errorf("%w: %d characters, max %d", ErrFrontTooLong, n, MaxFrontChars)
	}
	return nil
}

// ValidateBack checks a back value that has already been trimmed.
func ValidateBack(back string) error {
	if back == "" {
		return ErrEmptyBack
	}
	if n := utf8.RuneCountInString(back); n > MaxBackChars {
		return fmt.Errorf("%w: %d characters, max %d", ErrBackTooLong, n, MaxBackChars)
	}
	return nil
}

// ApplyEdit applies the supplied fields and advances the type through
// NextType using the type the card had before this call. Supplied values
// must already be trimmed and validated.
func (f *Flashcard) ApplyEdit(front, back *string) {
	f.Type = NextType(f.Type)
	if front != nil {
		f.Front = *front
	}
	if back != nil {
		f.Back = *back
	}
	f.UpdatedAt = time.Now().UTC()
}
