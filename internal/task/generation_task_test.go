package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/generation"
	"github.com/phrazzld/scry-gen/internal/platform/llm"
	"github.com/phrazzld/scry-gen/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProcessor struct {
	ProcessFn func(ctx context.Context, genID, userID uuid.UUID, items []generation.Item, meta service.ResultMeta) error
}

func (m *mockProcessor) Process(
	ctx context.Context,
	genID, userID uuid.UUID,
	items []generation.Item,
	meta service.ResultMeta,
) error {
	return m.ProcessFn(ctx, genID, userID, items, meta)
}

type mockFailureRecorder struct {
	mu     sync.Mutex
	Causes []error
}

func (m *mockFailureRecorder) RecordFailure(_ context.Context, _ uuid.UUID, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Causes = append(m.Causes, cause)
}

func newFactory(t *testing.T, gen generation.Generator, proc ResultProcessor, rec FailureRecorder) *GenerationTaskFactory {
	t.Helper()
	f, err := NewGenerationTaskFactory(gen, proc, rec, testLogger())
	require.NoError(t, err)
	return f
}

func okGenerator(items ...generation.Item) generation.Generator {
	return generation.GeneratorFunc(func(context.Context, string) (*generation.Result, error) {
		tokens := 10
		return &generation.Result{Items: items, TokenCount: &tokens}, nil
	})
}

func TestNewGenerationTaskFactory_RequiresDependencies(t *testing.T) {
	t.Parallel()
	_, err := NewGenerationTaskFactory(nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestGenerationTask_Success(t *testing.T) {
	t.Parallel()
	genID, userID := uuid.New(), uuid.New()
	item := generation.Item{Front: "Q", Back: "A"}

	var gotItems []generation.Item
	var gotMeta service.ResultMeta
	proc := &mockProcessor{ProcessFn: func(_ context.Context, g, u uuid.UUID, items []generation.Item, meta service.ResultMeta) error {
		assert.Equal(t, genID, g)
		assert.Equal(t, userID, u)
		gotItems, gotMeta = items, meta
		return nil
	}}
	rec := &mockFailureRecorder{}

	task := newFactory(t, okGenerator(item), proc, rec).CreateTask(genID, userID, "text")
	assert.Equal(t, TaskTypeGeneration, task.Type())
	assert.Equal(t, genID, task.GenerationID())

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, []generation.Item{item}, gotItems)
	assert.Equal(t, 10, *gotMeta.TokenCount)
	assert.Empty(t, rec.Causes)
}

func TestGenerationTask_ErrorPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		generator generation.Generator
		procErr   error
	}{
		{
			name: "provider timeout",
			generator: generation.GeneratorFunc(func(context.Context, string) (*generation.Result, error) {
				return nil, fmt.Errorf("send chat: %w", llm.ErrTimeout)
			}),
		},
		{
			name: "malformed response",
			generator: generation.GeneratorFunc(func(context.Context, string) (*generation.Result, error) {
				return nil, generation.ErrMalformedResponse
			}),
		},
		{
			name:      "proposal insert fails",
			generator: okGenerator(generation.Item{Front: "Q", Back: "A"}),
			procErr:   fmt.Errorf("%w: insert", service.ErrPersistence),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			proc := &mockProcessor{ProcessFn: func(context.Context, uuid.UUID, uuid.UUID, []generation.Item, service.ResultMeta) error {
				return tt.procErr
			}}
			rec := &mockFailureRecorder{}

			err := newFactory(t, tt.generator, proc, rec).CreateTask(uuid.New(), uuid.New(), "text").Execute(context.Background())
			require.Error(t, err)
			require.Len(t, rec.Causes, 1)
			assert.ErrorIs(t, err, rec.Causes[0])
		})
	}
}

func TestGenerationTask_PartialResultSkipsErrorPath(t *testing.T) {
	t.Parallel()
	proc := &mockProcessor{ProcessFn: func(context.Context, uuid.UUID, uuid.UUID, []generation.Item, service.ResultMeta) error {
		return fmt.Errorf("%w: update generation: %w", service.ErrPartialResult, errors.New("db gone"))
	}}
	rec := &mockFailureRecorder{}

	err := newFactory(t, okGenerator(generation.Item{Front: "Q", Back: "A"}), proc, rec).
		CreateTask(uuid.New(), uuid.New(), "text").
		Execute(context.Background())
	assert.ErrorIs(t, err, service.ErrPartialResult)
	assert.Empty(t, rec.Causes, "a generation with stored proposals must not be marked failed")
}

func TestGenerationTask_PanicTakesErrorPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		generator generation.Generator
		process   func() error
	}{
		{
			name: "generator panics",
			generator: generation.GeneratorFunc(func(context.Context, string) (*generation.Result, error) {
				panic("provider client bug")
			}),
		},
		{
			name:      "processor panics",
			generator: okGenerator(generation.Item{Front: "Q", Back: "A"}),
			process:   func() error { panic("nil store") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			proc := &mockProcessor{ProcessFn: func(context.Context, uuid.UUID, uuid.UUID, []generation.Item, service.ResultMeta) error {
				if tt.process != nil {
					return tt.process()
				}
				return nil
			}}
			rec := &mockFailureRecorder{}

			err := newFactory(t, tt.generator, proc, rec).CreateTask(uuid.New(), uuid.New(), "text").Execute(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "panicked")
			require.Len(t, rec.Causes, 1)
			assert.Equal(t, err, rec.Causes[0])
		})
	}
}

func TestGenerationTask_NilResultThroughRunner(t *testing.T) {
	t.Parallel()
	gen := generation.GeneratorFunc(func(context.Context, string) (*generation.Result, error) {
		return nil, nil
	})
	proc := &mockProcessor{ProcessFn: func(context.Context, uuid.UUID, uuid.UUID, []generation.Item, service.ResultMeta) error {
		t.Error("processor must not run without a result")
		return nil
	}}
	rec := &mockFailureRecorder{}

	runner := NewTaskRunner(TaskRunnerConfig{WorkerCount: 1, QueueSize: 1}, testLogger())
	runner.Start()
	require.NoError(t, runner.Submit(context.Background(), newFactory(t, gen, proc, rec).CreateTask(uuid.New(), uuid.New(), "text")))
	require.NoError(t, runner.Stop(context.Background()))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.Causes, 1)
	assert.ErrorIs(t, rec.Causes[0], generation.ErrMalformedResponse)
}
