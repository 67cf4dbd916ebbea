package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newFlashcardService(t *testing.T, ts *testStores) *FlashcardService {
	t.Helper()
	s, err := NewFlashcardService(ts.cards, testLogger())
	require.NoError(t, err)
	return s
}

func seedCard(t *testing.T, ts *testStores, userID uuid.UUID, cardType domain.FlashcardType) *domain.Flashcard {
	t.Helper()
	card, err := domain.NewManualFlashcard(userID, "front", "back")
	require.NoError(t, err)
	card.Type = cardType
	require.NoError(t, ts.mem.Flashcards().CreateMany(context.Background(), []*domain.Flashcard{card}))
	return card
}

func TestFlashcardService_UpdateTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from domain.FlashcardType
		want domain.FlashcardType
	}{
		{domain.FlashcardTypeManual, domain.FlashcardTypeManual},
		{domain.FlashcardTypeAIEdited, domain.FlashcardTypeAIEdited},
		{domain.FlashcardTypeAIProposal, domain.FlashcardTypeAIEdited},
		{domain.FlashcardTypeAIGenerated, domain.FlashcardTypeAIEdited},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			t.Parallel()
			ts := newTestStores()
			s := newFlashcardService(t, ts)
			userID := uuid.New()
			card := seedCard(t, ts, userID, tt.from)

			updated, err := s.Update(context.Background(), userID, card.ID, UpdateInput{Back: strPtr("new back")})
			require.NoError(t, err)
			assert.Equal(t, tt.want, updated.Type)

			stored, err := ts.mem.Flashcards().GetByIDForUser(context.Background(), card.ID, userID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stored.Type)
		})
	}
}

func TestFlashcardService_UpdateAppliesOnlySuppliedFields(t *testing.T) {
	t.Parallel()
	ts := newTestStores()
	s := newFlashcardService(t, ts)
	userID := uuid.New()
	card := seedCard(t, ts, userID, domain.FlashcardTypeAIProposal)

	updated, err := s.Update(context.Background(), userID, card.ID, UpdateInput{Front: strPtr("  trimmed front  ")})
	require.NoError(t, err)
	assert.Equal(t, "trimmed front", updated.Front)
	assert.Equal(t, "back", updated.Back)
	assert.False(t, updated.UpdatedAt.Before(card.UpdatedAt))
}

func TestFlashcardService_UpdateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   UpdateInput
		foreign bool
		wantErr error
	}{
		{"no fields", UpdateInput{}, false, ErrEmptyUpdate},
		{"blank front", UpdateInput{Front: strPtr("   ")}, false, domain.ErrEmptyFront},
		{"blank back", UpdateInput{Back: strPtr("")}, false, domain.ErrEmptyBack},
		{"front too long", UpdateInput{Front: strPtr(strings.Repeat("q", 201))}, false, domain.ErrFrontTooLong},
		{"back too long", UpdateInput{Back: strPtr(strings.Repeat("a", 501))}, false, domain.ErrBackTooLong},
		{"foreign card", UpdateInput{Back: strPtr("x")}, true, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestStores()
			s := newFlashcardService(t, ts)
			owner := uuid.New()
			card := seedCard(t, ts, owner, domain.FlashcardTypeAIProposal)

			caller := owner
			if tt.foreign {
				caller = uuid.New()
			}
			_, err := s.Update(context.Background(), caller, card.ID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)

			stored, err := ts.mem.Flashcards().GetByIDForUser(context.Background(), card.ID, owner)
			require.NoError(t, err)
			assert.Equal(t, domain.FlashcardTypeAIProposal, stored.Type, "rejected edits leave the type unchanged")
		})
	}
}

func TestFlashcardService_BoundaryLengths(t *testing.T) {
	t.Parallel()
	ts := newTestStores()
	s := newFlashcardService(t, ts)
	userID := uuid.New()
	card := seedCard(t, ts, userID, domain.FlashcardTypeManual)

	_, err := s.Update(context.Background(), userID, card.ID, UpdateInput{
		Front: strPtr(strings.Repeat("界", 200)),
		Back:  strPtr(strings.Repeat("界", 500)),
	})
	assert.NoError(t, err)
}

func TestFlashcardService_CRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := newTestStores()
	s := newFlashcardService(t, ts)
	userID := uuid.New()

	_, err := s.Create(ctx, userID, "", "back")
	assert.ErrorIs(t, err, domain.ErrEmptyFront)

	card, err := s.Create(ctx, userID, " Q ", " A ")
	require.NoError(t, err)
	assert.Equal(t, domain.FlashcardTypeManual, card.Type)
	assert.Nil(t, card.GenerationID)
	assert.Equal(t, "Q", card.Front)

	got, err := s.Get(ctx, userID, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card.ID, got.ID)
	_, err = s.Get(ctx, uuid.New(), card.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.ListByUser(ctx, userID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, s.Delete(ctx, uuid.New(), card.ID), ErrNotFound)
	require.NoError(t, s.Delete(ctx, userID, card.ID))
	_, err = s.Get(ctx, userID, card.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
