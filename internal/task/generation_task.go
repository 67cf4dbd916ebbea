package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/generation"
	"github.com/phrazzld/scry-gen/internal/platform/logger"
	"github.com/phrazzld/scry-gen/internal/redact"
	"github.com/phrazzld/scry-gen/internal/service"
)

// ResultProcessor persists a generator result.
type ResultProcessor interface {
	Process(ctx context.Context, generationID, userID uuid.UUID, items []generation.Item, meta service.ResultMeta) error
}

// FailureRecorder is the error path of a generation.
type FailureRecorder interface {
	RecordFailure(ctx context.Context, generationID uuid.UUID, cause error)
}

// GenerationTask is the background continuation of one generation:
// generator, then result processor, then the error path on failure.
type GenerationTask struct {
	id           uuid.UUID
	generationID uuid.UUID
	userID       uuid.UUID
	text         string

	generator generation.Generator
	processor ResultProcessor
	failures  FailureRecorder
	logger    *slog.Logger
}

var _ Task = (*GenerationTask)(nil)

// ID implements Task.
func (t *GenerationTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *GenerationTask) Type() string { return TaskTypeGeneration }

// GenerationID returns the generation this task settles.
func (t *GenerationTask) GenerationID() uuid.UUID { return t.generationID }

// Execute runs the generation. Every failure before proposals are stored is
// recorded on the generation log, including a panic in the generator or the
// processor. A partial result is only logged: the proposals exist, so the
// generation must not also be marked failed.
func (t *GenerationTask) Execute(ctx context.Context) (err error) {
	log := logger.FromContextOrDefault(ctx, t.logger).With(
		"generation_id", t.generationID,
		"user_id", t.userID,
	)
	ctx = logger.WithLogger(ctx, log)

	defer func() {
		if r := recover(); r != nil {
			log.Error("generation panicked", "panic", r)
			err = fmt.Errorf("generation %s panicked: %v", t.generationID, r)
			t.failures.RecordFailure(ctx, t.generationID, err)
		}
	}()

	log.Info("generation started", "input_length", len(t.text))

	result, err := t.generator.Generate(ctx, t.text)
	if err == nil && result == nil {
		err = fmt.Errorf("%w: generator returned no result", generation.ErrMalformedResponse)
	}
	if err == nil {
		err = t.processor.Process(ctx, t.generationID, t.userID, result.Items, service.ResultMeta{
			TokenCount: result.TokenCount,
			Model:      result.Model,
		})
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrPartialResult):
		log.Error("generation left processing after partial result", "error", redact.Error(err))
		return fmt.Errorf("generation %s: %w", t.generationID, err)
	default:
		t.failures.RecordFailure(ctx, t.generationID, err)
		return fmt.Errorf("generation %s: %w", t.generationID, err)
	}
}

// GenerationTaskFactory builds GenerationTasks that share one generator,
// processor and failure recorder.
type GenerationTaskFactory struct {
	generator generation.Generator
	processor ResultProcessor
	failures  FailureRecorder
	logger    *slog.Logger
}

// NewGenerationTaskFactory creates a GenerationTaskFactory.
func NewGenerationTaskFactory(
	generator generation.Generator,
	processor ResultProcessor,
	failures FailureRecorder,
	log *slog.Logger,
) (*GenerationTaskFactory, error) {
	if generator == nil || processor == nil || failures == nil {
		return nil, errors.New("generator, processor and failure recorder are required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &GenerationTaskFactory{
		generator: generator,
		processor: processor,
		failures:  failures,
		logger:    log.With("component", "generation_task"),
	}, nil
}

// CreateTask builds the task for one generation.
func (f *GenerationTaskFactory) CreateTask(generationID, userID uuid.UUID, text string) *GenerationTask {
	return &GenerationTask{
		id:           uuid.New(),
		generationID: generationID,
		userID:       userID,
		text:         text,
		generator:    f.generator,
		processor:    f.processor,
		failures:     f.failures,
		logger:       f.logger,
	}
}
