package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/platform/logger"
	"github.com/phrazzld/scry-gen/internal/store"
)

// UpdateInput holds the fields of an edit. A nil field is left unchanged.
type UpdateInput struct {
	Front *string `json:"front"`
	Back  *string `json:"back"`
}

// FlashcardService manages a user's flashcards, including the edit-commit
// that moves AI cards to ai-edited.
type FlashcardService struct {
	cards  store.FlashcardStore
	logger *slog.Logger
}

// NewFlashcardService creates a FlashcardService.
func NewFlashcardService(cards store.FlashcardStore, log *slog.Logger) (*FlashcardService, error) {
	if cards == nil {
		return nil, &ServiceError{Operation: "create_flashcard_service", Message: "cards cannot be nil"}
	}
	if log == nil {
		log = slog.Default()
	}
	return &FlashcardService{cards: cards, logger: log.With("component", "flashcard_service")}, nil
}

// Update commits an edit. Supplied fields are trimmed and validated before
// the card is read; the new type is computed from the type the card had
// before the edit.
func (s *FlashcardService) Update(
	ctx context.Context,
	userID, id uuid.UUID,
	in UpdateInput,
) (*domain.Flashcard, error) {
	if in.Front == nil && in.Back == nil {
		return nil, ErrEmptyUpdate
	}

	var front, back *string
	if in.Front != nil {
		v := strings.TrimSpace(*in.Front)
		if err := domain.ValidateFront(v); err != nil {
			return nil, err
		}
		front = &v
	}
	if in.Back != nil {
		v := strings.TrimSpace(*in.Back)
		if err := domain.ValidateBack(v); err != nil {
			return nil, err
		}
		back = &v
	}

	var previous domain.FlashcardType
	card, err := s.cards.Update(ctx, id, userID, func(c *domain.Flashcard) error {
		previous = c.Type
		c.ApplyEdit(front, back)
		return nil
	})
	if err != nil {
		return nil, NewServiceError("update_flashcard", "failed to update flashcard", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("flashcard edited",
		"flashcard_id", id,
		"user_id", userID,
		"from_type", previous,
		"to_type", card.Type)
	return card, nil
}

// Create stores a manual card with no generation.
func (s *FlashcardService) Create(ctx context.Context, userID uuid.UUID, front, back string) (*domain.Flashcard, error) {
	card, err := domain.NewManualFlashcard(userID, front, back)
	if err != nil {
		return nil, err
	}
	if err := s.cards.CreateMany(ctx, []*domain.Flashcard{card}); err != nil {
		return nil, NewServiceError("create_flashcard", "failed to store flashcard", err)
	}
	return card, nil
}

// Get returns one of the user's cards.
func (s *FlashcardService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Flashcard, error) {
	card, err := s.cards.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, NewServiceError("get_flashcard", "failed to read flashcard", err)
	}
	return card, nil
}

// ListByUser returns a page of the user's cards, newest first.
func (s *FlashcardService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Flashcard, error) {
	cards, err := s.cards.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_flashcards", "failed to list flashcards", err)
	}
	return cards, nil
}

// Delete removes one of the user's cards.
func (s *FlashcardService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.cards.Delete(ctx, id, userID); err != nil {
		return NewServiceError("delete_flashcard", "failed to delete flashcard", err)
	}
	return nil
}
