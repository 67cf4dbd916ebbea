package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/domain"
)

// FlashcardMutator edits a flashcard in place. Returning an error aborts the
// update and leaves the stored row untouched.
type FlashcardMutator func(card *domain.Flashcard) error

// FlashcardStore defines the interface for flashcard persistence.
type FlashcardStore interface {
	// CreateMany inserts all cards or none, setting each card's ID.
	CreateMany(ctx context.Context, cards []*domain.Flashcard) error

	// GetByIDForUser retrieves a card owned by userID.
	// Returns ErrFlashcardNotFound if it does not exist or belongs to someone else.
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Flashcard, error)

	// Update loads the card owned by userID, applies fn, validates and saves
	// the result. The read and the write are isolated from concurrent edits.
	// Returns ErrFlashcardNotFound if the card does not exist or belongs to
	// someone else.
	Update(ctx context.Context, id, userID uuid.UUID, fn FlashcardMutator) (*domain.Flashcard, error)

	// ListByGeneration returns the cards produced by a generation in creation order.
	ListByGeneration(ctx context.Context, generationID uuid.UUID) ([]*domain.Flashcard, error)

	// ListByUser returns a user's cards, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Flashcard, error)

	// Delete removes a card owned by userID.
	// Returns ErrFlashcardNotFound if nothing was deleted.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// WithTx returns a FlashcardStore that runs its queries on tx.
	WithTx(tx *sql.Tx) FlashcardStore
}
