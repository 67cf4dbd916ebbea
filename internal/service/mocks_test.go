package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/events"
	"github.com/phrazzld/scry-gen/internal/platform/memstore"
	"github.com/phrazzld/scry-gen/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockGenerationStore delegates to an in-memory store unless a Fn is set.
type mockGenerationStore struct {
	store.GenerationStore
	CreateFn        func(ctx context.Context, gen *domain.Generation) error
	MarkCompletedFn func(ctx context.Context, id uuid.UUID, result domain.GenerationResult) error
	GetByIDFn       func(ctx context.Context, id, userID uuid.UUID) (*domain.Generation, error)
}

func (m *mockGenerationStore) Create(ctx context.Context, gen *domain.Generation) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, gen)
	}
	return m.GenerationStore.Create(ctx, gen)
}

func (m *mockGenerationStore) MarkCompleted(ctx context.Context, id uuid.UUID, result domain.GenerationResult) error {
	if m.MarkCompletedFn != nil {
		return m.MarkCompletedFn(ctx, id, result)
	}
	return m.GenerationStore.MarkCompleted(ctx, id, result)
}

func (m *mockGenerationStore) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Generation, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id, userID)
	}
	return m.GenerationStore.GetByIDForUser(ctx, id, userID)
}

// WithTx keeps the mock in front of the transactional store.
func (m *mockGenerationStore) WithTx(*sql.Tx) store.GenerationStore { return m }

// mockGenerationLogStore delegates to an in-memory store unless a Fn is set.
type mockGenerationLogStore struct {
	store.GenerationLogStore
	CreateFn        func(ctx context.Context, log *domain.GenerationLog) error
	MarkCompletedFn func(ctx context.Context, id uuid.UUID, at time.Time, tokens *int) error
	RecordErrorFn   func(ctx context.Context, id uuid.UUID, info, code string, at time.Time) (bool, error)
}

func (m *mockGenerationLogStore) Create(ctx context.Context, log *domain.GenerationLog) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, log)
	}
	return m.GenerationLogStore.Create(ctx, log)
}

func (m *mockGenerationLogStore) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time, tokens *int) error {
	if m.MarkCompletedFn != nil {
		return m.MarkCompletedFn(ctx, id, at, tokens)
	}
	return m.GenerationLogStore.MarkCompleted(ctx, id, at, tokens)
}

func (m *mockGenerationLogStore) RecordError(
	ctx context.Context,
	id uuid.UUID,
	info, code string,
	at time.Time,
) (bool, error) {
	if m.RecordErrorFn != nil {
		return m.RecordErrorFn(ctx, id, info, code, at)
	}
	return m.GenerationLogStore.RecordError(ctx, id, info, code, at)
}

// WithTx keeps the mock in front of the transactional store.
func (m *mockGenerationLogStore) WithTx(*sql.Tx) store.GenerationLogStore { return m }

// mockFlashcardStore delegates to an in-memory store unless a Fn is set.
type mockFlashcardStore struct {
	store.FlashcardStore
	CreateManyFn func(ctx context.Context, cards []*domain.Flashcard) error
}

func (m *mockFlashcardStore) CreateMany(ctx context.Context, cards []*domain.Flashcard) error {
	if m.CreateManyFn != nil {
		return m.CreateManyFn(ctx, cards)
	}
	return m.FlashcardStore.CreateMany(ctx, cards)
}

type testStores struct {
	mem         *memstore.Store
	generations *mockGenerationStore
	logs        *mockGenerationLogStore
	cards       *mockFlashcardStore
}

func newTestStores() *testStores {
	mem := memstore.New()
	return &testStores{
		mem:         mem,
		generations: &mockGenerationStore{GenerationStore: mem.Generations()},
		logs:        &mockGenerationLogStore{GenerationLogStore: mem.GenerationLogs()},
		cards:       &mockFlashcardStore{FlashcardStore: mem.Flashcards()},
	}
}

// recordingEmitter captures emitted events and returns Err.
type recordingEmitter struct {
	Events []*events.TaskRequestEvent
	Err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.TaskRequestEvent) error {
	e.Events = append(e.Events, event)
	return e.Err
}
