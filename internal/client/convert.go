package client

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/api"
	"github.com/phrazzld/scry-gen/internal/domain"
)

func snapshotFromResponse(resp api.SnapshotResponse) (*domain.GenerationSnapshot, error) {
	genID, err := uuid.Parse(resp.Generation.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid generation id: %w", err)
	}
	userID, err := uuid.Parse(resp.Generation.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	gen := &domain.Generation{
		ID:             genID,
		UserID:         userID,
		RequestTime:    resp.Generation.RequestTime,
		ResponseTime:   resp.Generation.ResponseTime,
		TokenCount:     resp.Generation.TokenCount,
		Model:          resp.Generation.Model,
		GeneratedCount: resp.Generation.GeneratedCount,
	}

	var genLog *domain.GenerationLog
	if l := resp.Log; l != nil {
		genLog = &domain.GenerationLog{
			GenerationID: genID,
			RequestTime:  l.RequestTime,
			ResponseTime: l.ResponseTime,
			TokenCount:   l.TokenCount,
			ErrorInfo:    l.ErrorInfo,
			ErrorCode:    l.ErrorCode,
			InputLength:  l.InputLength,
			InputHash:    l.InputHash,
		}
	}

	proposals, err := flashcardsFromResponse(resp.Proposals)
	if err != nil {
		return nil, err
	}

	snap := domain.NewGenerationSnapshot(gen, genLog, proposals)
	// the server's status is authoritative; derivation is for the server side
	snap.Status = domain.GenerationStatus(resp.Status)
	return snap, nil
}

func flashcardsFromResponse(items []api.FlashcardResponse) ([]*domain.Flashcard, error) {
	cards := make([]*domain.Flashcard, 0, len(items))
	for _, item := range items {
		card, err := flashcardFromResponse(item)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func flashcardFromResponse(item api.FlashcardResponse) (*domain.Flashcard, error) {
	id, err := uuid.Parse(item.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid flashcard id: %w", err)
	}
	userID, err := uuid.Parse(item.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	card := &domain.Flashcard{
		ID:        id,
		UserID:    userID,
		Front:     item.Front,
		Back:      item.Back,
		Type:      domain.FlashcardType(item.Type),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if item.GenerationID != nil {
		genID, err := uuid.Parse(*item.GenerationID)
		if err != nil {
			return nil, fmt.Errorf("invalid generation id: %w", err)
		}
		card.GenerationID = &genID
	}
	return card, nil
}
