package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/generation"
	"github.com/phrazzld/scry-gen/internal/metrics"
	"github.com/phrazzld/scry-gen/internal/platform/logger"
	"github.com/phrazzld/scry-gen/internal/store"
)

// ResultMeta is the provider metadata stored alongside a result.
type ResultMeta struct {
	TokenCount *int
	Model      *string
}

// ResultProcessor persists a validated provider result: the proposals first,
// then the generation, then its log.
type ResultProcessor struct {
	generations store.GenerationStore
	logs        store.GenerationLogStore
	cards       store.FlashcardStore
	clock       clockwork.Clock
	logger      *slog.Logger
}

// NewResultProcessor creates a ResultProcessor. A nil clock means the real clock.
func NewResultProcessor(
	generations store.GenerationStore,
	logs store.GenerationLogStore,
	cards store.FlashcardStore,
	clock clockwork.Clock,
	log *slog.Logger,
) (*ResultProcessor, error) {
	if generations == nil || logs == nil || cards == nil {
		return nil, &ServiceError{Operation: "create_result_processor", Message: "stores cannot be nil"}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = slog.Default()
	}
	return &ResultProcessor{
		generations: generations,
		logs:        logs,
		cards:       cards,
		clock:       clock,
		logger:      log.With("component", "result_processor"),
	}, nil
}

// Process stores items as ai-proposal flashcards and records the result.
//
// A validation or card insert failure leaves nothing written and returns an
// error the caller should record as a generation failure. Once cards exist,
// any later failure is returned wrapped in ErrPartialResult.
func (p *ResultProcessor) Process(
	ctx context.Context,
	generationID, userID uuid.UUID,
	items []generation.Item,
	meta ResultMeta,
) error {
	log := logger.FromContextOrDefault(ctx, p.logger).With(
		"generation_id", generationID,
		"user_id", userID,
	)

	valid, err := generation.ValidateItems(items)
	if err != nil {
		return err
	}

	cards := make([]*domain.Flashcard, 0, len(valid))
	for _, item := range valid {
		card, err := domain.NewProposal(userID, generationID, item.Front, item.Back)
		if err != nil {
			return fmt.Errorf("%w: %w", generation.ErrValidation, err)
		}
		cards = append(cards, card)
	}

	if err := p.cards.CreateMany(ctx, cards); err != nil {
		log.Error("failed to store proposals", "error", err, "count", len(cards))
		return fmt.Errorf("%w: store proposals: %w", ErrPersistence, err)
	}

	now := p.clock.Now().UTC()
	result := domain.GenerationResult{
		ResponseTime:   now,
		TokenCount:     meta.TokenCount,
		Model:          meta.Model,
		GeneratedCount: len(cards),
	}
	if err := p.generations.MarkCompleted(ctx, generationID, result); err != nil {
		log.Error("proposals stored but generation update failed", "error", err)
		return fmt.Errorf("%w: update generation: %w: %w", ErrPartialResult, ErrPersistence, err)
	}

	if err := p.logs.MarkCompleted(ctx, generationID, now, meta.TokenCount); err != nil {
		log.Error("generation completed but log update failed", "error", err)
		return fmt.Errorf("%w: update generation log: %w: %w", ErrPartialResult, ErrPersistence, err)
	}

	metrics.GenerationsCompleted.Inc()
	metrics.FlashcardsGenerated.Add(float64(len(cards)))
	if meta.TokenCount != nil {
		metrics.TokensUsed.Add(float64(*meta.TokenCount))
	}
	log.Info("generation result stored", "generated_count", len(cards))
	return nil
}
