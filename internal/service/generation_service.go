package service

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/events"
	"github.com/phrazzld/scry-gen/internal/generation"
	"github.com/phrazzld/scry-gen/internal/metrics"
	"github.com/phrazzld/scry-gen/internal/platform/logger"
	"github.com/phrazzld/scry-gen/internal/poll"
	"github.com/phrazzld/scry-gen/internal/redact"
	"github.com/phrazzld/scry-gen/internal/store"
	"golang.org/x/crypto/blake2b"
)

// GenerationConfig bounds the accepted input and the stored error text.
type GenerationConfig struct {
	MinInputChars     int
	MaxInputChars     int
	MaxErrorInfoChars int
}

// DefaultGenerationConfig returns the standard bounds.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		MinInputChars:     domain.MinInputChars,
		MaxInputChars:     domain.MaxInputChars,
		MaxErrorInfoChars: domain.MaxErrorInfoChars,
	}
}

// InitiateResult is returned as soon as a generation has been recorded.
type InitiateResult struct {
	GenerationID uuid.UUID               `json:"generation_id"`
	Status       domain.GenerationStatus `json:"status"`
}

// GenerationService starts generations and reports their status.
type GenerationService struct {
	generations store.GenerationStore
	logs        store.GenerationLogStore
	cards       store.FlashcardStore
	emitter     events.EventEmitter
	db          *sql.DB
	cfg         GenerationConfig
	clock       clockwork.Clock
	logger      *slog.Logger
}

// GenerationServiceOption configures a GenerationService.
type GenerationServiceOption func(*GenerationService)

// WithGenerationClock sets the clock used for timestamps.
func WithGenerationClock(c clockwork.Clock) GenerationServiceOption {
	return func(s *GenerationService) { s.clock = c }
}

// WithGenerationDB makes Initiate write the generation and its log in one
// transaction on db. Without it the two inserts are independent.
func WithGenerationDB(db *sql.DB) GenerationServiceOption {
	return func(s *GenerationService) { s.db = db }
}

// WithGenerationConfig overrides the input and error bounds.
func WithGenerationConfig(cfg GenerationConfig) GenerationServiceOption {
	return func(s *GenerationService) { s.cfg = cfg }
}

// NewGenerationService creates a GenerationService. The emitter receives a
// generation.requested event for every recorded generation.
func NewGenerationService(
	generations store.GenerationStore,
	logs store.GenerationLogStore,
	cards store.FlashcardStore,
	emitter events.EventEmitter,
	log *slog.Logger,
	opts ...GenerationServiceOption,
) (*GenerationService, error) {
	if generations == nil || logs == nil || cards == nil {
		return nil, &ServiceError{Operation: "create_generation_service", Message: "stores cannot be nil"}
	}
	if emitter == nil {
		return nil, &ServiceError{Operation: "create_generation_service", Message: "emitter cannot be nil"}
	}
	if log == nil {
		log = slog.Default()
	}

	s := &GenerationService{
		generations: generations,
		logs:        logs,
		cards:       cards,
		emitter:     emitter,
		cfg:         DefaultGenerationConfig(),
		clock:       clockwork.NewRealClock(),
		logger:      log.With("component", "generation_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Initiate validates text, records a generation with its log and hands the
// work to the background. It returns without waiting for the provider.
//
// If the background submission is refused the generation is marked failed
// immediately and its id is still returned.
func (s *GenerationService) Initiate(ctx context.Context, userID uuid.UUID, text string) (*InitiateResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("user_id", userID)

	text = strings.TrimSpace(text)
	length := utf8.RuneCountInString(text)
	if length < s.cfg.MinInputChars || length > s.cfg.MaxInputChars {
		return nil, fmt.Errorf("%w: %d characters, must be between %d and %d",
			generation.ErrInputLength, length, s.cfg.MinInputChars, s.cfg.MaxInputChars)
	}

	now := s.clock.Now().UTC()
	gen := &domain.Generation{UserID: userID, RequestTime: now}
	genLog := &domain.GenerationLog{
		RequestTime: now,
		InputLength: length,
		InputHash:   InputHash(text),
	}
	if err := s.record(ctx, gen, genLog); err != nil {
		log.Error("failed to record generation", "error", redact.Error(err))
		var svcErr *ServiceError
		if !errors.As(err, &svcErr) {
			err = NewServiceError("initiate", "failed to record generation", err)
		}
		return nil, err
	}
	log = log.With("generation_id", gen.ID)

	metrics.GenerationsStarted.Inc()

	event, err := events.NewTaskRequestEvent(events.EventTypeGenerationRequested, events.GenerationRequested{
		GenerationID: gen.ID,
		UserID:       userID,
		InputText:    text,
	})
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Error("background generation refused", "error", err)
		s.RecordFailure(ctx, gen.ID, err)
	} else {
		log.Info("generation initiated", "input_length", length)
	}

	return &InitiateResult{GenerationID: gen.ID, Status: domain.GenerationStatusProcessing}, nil
}

// record inserts the generation and then its log, inside a transaction when
// the service has a database.
func (s *GenerationService) record(ctx context.Context, gen *domain.Generation, genLog *domain.GenerationLog) error {
	write := func(ctx context.Context, gens store.GenerationStore, logs store.GenerationLogStore) error {
		if err := gens.Create(ctx, gen); err != nil {
			return NewServiceError("initiate", "failed to create generation", err)
		}
		genLog.GenerationID = gen.ID
		if err := logs.Create(ctx, genLog); err != nil {
			return NewServiceError("initiate", "failed to create generation log", err)
		}
		return nil
	}

	if s.db == nil {
		return write(ctx, s.generations, s.logs)
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return write(ctx, s.generations.WithTx(tx), s.logs.WithTx(tx))
	})
}

// RecordFailure is the error path of a generation: it stores the redacted,
// truncated error text and its category and marks the generation responded.
// Only the first recorded error is kept. Failures here are logged, never
// returned.
func (s *GenerationService) RecordFailure(ctx context.Context, generationID uuid.UUID, cause error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("generation_id", generationID)

	if cause == nil {
		cause = errors.New("unknown failure")
	}
	category := generation.Categorize(cause)
	info := redact.Truncate(redact.Error(cause), s.cfg.MaxErrorInfoChars)
	if info == "" {
		info = string(category)
	}
	now := s.clock.Now().UTC()

	recorded, err := s.logs.RecordError(ctx, generationID, info, string(category), now)
	if err != nil {
		log.Error("failed to record generation error",
			"error", redact.Error(err),
			"cause", info)
		return
	}
	if !recorded {
		log.Warn("generation already has an error recorded", "cause", info)
		return
	}

	if err := s.generations.MarkResponded(ctx, generationID, now); err != nil {
		log.Error("failed to set generation response time", "error", redact.Error(err))
	}

	metrics.GenerationsFailed.WithLabelValues(string(category)).Inc()
	log.Warn("generation failed", "category", category, "cause", info)
}

// Snapshot reads a generation, its log and its proposals and derives the
// current status. A missing or foreign generation is ErrNotFound.
func (s *GenerationService) Snapshot(
	ctx context.Context,
	userID, generationID uuid.UUID,
) (*domain.GenerationSnapshot, error) {
	gen, err := s.generations.GetByIDForUser(ctx, generationID, userID)
	if err != nil {
		return nil, NewServiceError("snapshot", "failed to read generation", err)
	}

	genLog, err := s.logs.GetByGenerationID(ctx, generationID)
	if err != nil && !store.IsNotFoundError(err) {
		return nil, NewServiceError("snapshot", "failed to read generation log", err)
	}

	proposals, err := s.cards.ListByGeneration(ctx, generationID)
	if err != nil {
		return nil, NewServiceError("snapshot", "failed to read proposals", err)
	}

	return domain.NewGenerationSnapshot(gen, genLog, proposals), nil
}

// SnapshotFetcher binds Snapshot to userID for an in-process poll.Synchronizer.
func (s *GenerationService) SnapshotFetcher(userID uuid.UUID) poll.FetcherFunc {
	return func(ctx context.Context, generationID uuid.UUID) (*domain.GenerationSnapshot, error) {
		return s.Snapshot(ctx, userID, generationID)
	}
}

// Proposals returns the flashcards a generation produced.
func (s *GenerationService) Proposals(
	ctx context.Context,
	userID, generationID uuid.UUID,
) ([]*domain.Flashcard, error) {
	if _, err := s.generations.GetByIDForUser(ctx, generationID, userID); err != nil {
		return nil, NewServiceError("list_proposals", "failed to read generation", err)
	}
	cards, err := s.cards.ListByGeneration(ctx, generationID)
	if err != nil {
		return nil, NewServiceError("list_proposals", "failed to read proposals", err)
	}
	return cards, nil
}

// List returns a page of the user's generations, newest first.
func (s *GenerationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Generation, error) {
	gens, err := s.generations.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_generations", "failed to list generations", err)
	}
	return gens, nil
}

// InputHash returns the hex BLAKE2b-256 digest of text.
func InputHash(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
