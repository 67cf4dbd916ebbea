package service_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-gen/internal/domain"
	"github.com/phrazzld/scry-gen/internal/events"
	"github.com/phrazzld/scry-gen/internal/generation"
	"github.com/phrazzld/scry-gen/internal/platform/llm"
	"github.com/phrazzld/scry-gen/internal/platform/memstore"
	"github.com/phrazzld/scry-gen/internal/poll"
	"github.com/phrazzld/scry-gen/internal/service"
	"github.com/phrazzld/scry-gen/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipeline struct {
	generations *service.GenerationService
	flashcards  *service.FlashcardService
	runner      *task.TaskRunner
}

// newPipeline wires the whole generation path against a fake provider.
func newPipeline(t *testing.T, provider http.HandlerFunc) *pipeline {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)

	client, err := llm.NewClient(llm.Config{
		APIKey:         "test-key",
		BaseURL:        srv.URL,
		Model:          "test/model",
		MaxAttempts:    1,
		BaseDelay:      time.Millisecond,
		RequestTimeout: 5 * time.Second,
	}, log)
	require.NoError(t, err)

	prompts, err := generation.NewPromptBuilder("")
	require.NoError(t, err)
	generator, err := generation.NewLLMGenerator(client, prompts, true, log)
	require.NoError(t, err)

	mem := memstore.New()
	processor, err := service.NewResultProcessor(mem.Generations(), mem.GenerationLogs(), mem.Flashcards(), nil, log)
	require.NoError(t, err)

	emitter := events.NewInMemoryEventEmitter(log)
	genService, err := service.NewGenerationService(mem.Generations(), mem.GenerationLogs(), mem.Flashcards(), emitter, log)
	require.NoError(t, err)
	cardService, err := service.NewFlashcardService(mem.Flashcards(), log)
	require.NoError(t, err)

	runner := task.NewTaskRunner(task.TaskRunnerConfig{WorkerCount: 2, QueueSize: 10}, log)
	factory, err := task.NewGenerationTaskFactory(generator, processor, genService, log)
	require.NoError(t, err)
	emitter.RegisterHandler(task.NewGenerationEventHandler(factory, runner, log))
	runner.Start()
	t.Cleanup(func() { _ = runner.Stop(context.Background()) })

	return &pipeline{generations: genService, flashcards: cardService, runner: runner}
}

func chatReply(t *testing.T, content string) string {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"model": "test/model",
		"choices": []map[string]any{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": content}},
		},
		"usage": map[string]int{"prompt_tokens": 100, "completion_tokens": 50, "total_tokens": 150},
	})
	require.NoError(t, err)
	return string(body)
}

func TestPipeline_GenerateThenEdit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cards := `{"flashcards":[
		{"front":"What is photosynthesis?","back":"Conversion of light into chemical energy"},
		{"front":"Where does it happen?","back":"In chloroplasts"},
		{"front":"What gas is released?","back":"Oxygen"}
	]}`
	p := newPipeline(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatReply(t, cards)))
	})

	userID := uuid.New()
	res, err := p.generations.Initiate(ctx, userID, strings.Repeat("Plants use sunlight. ", 75))
	require.NoError(t, err)
	assert.Equal(t, domain.GenerationStatusProcessing, res.Status)

	require.NoError(t, p.runner.Stop(ctx))

	snap, err := p.generations.Snapshot(ctx, userID, res.GenerationID)
	require.NoError(t, err)
	require.Equal(t, domain.GenerationStatusCompleted, snap.Status)
	require.Len(t, snap.Proposals, 3)
	assert.Equal(t, 3, *snap.Generation.GeneratedCount)
	assert.Equal(t, 150, *snap.Generation.TokenCount)
	assert.Equal(t, "test/model", *snap.Generation.Model)
	assert.Nil(t, snap.Log.ErrorInfo)

	proposal := snap.Proposals[0]
	assert.Equal(t, domain.FlashcardTypeAIProposal, proposal.Type)

	back := "Turning light into sugar"
	edited, err := p.flashcards.Update(ctx, userID, proposal.ID, service.UpdateInput{Back: &back})
	require.NoError(t, err)
	assert.Equal(t, domain.FlashcardTypeAIEdited, edited.Type)
	assert.Equal(t, "What is photosynthesis?", edited.Front)
	assert.Equal(t, back, edited.Back)
}

func TestPipeline_ProviderFailureMarksGenerationFailed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p := newPipeline(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key sk-live-secretsecretsecret","type":"auth"}}`))
	})

	userID := uuid.New()
	res, err := p.generations.Initiate(ctx, userID, strings.Repeat("a", 1000))
	require.NoError(t, err)
	require.NoError(t, p.runner.Stop(ctx))

	snap, err := p.generations.Snapshot(ctx, userID, res.GenerationID)
	require.NoError(t, err)
	assert.Equal(t, domain.GenerationStatusFailed, snap.Status)
	assert.Empty(t, snap.Proposals)
	require.NotNil(t, snap.Log.ErrorCode)
	assert.Equal(t, string(generation.CategoryAuth), *snap.Log.ErrorCode)
	assert.NotContains(t, *snap.Log.ErrorInfo, "secretsecretsecret")
	assert.NotNil(t, snap.Generation.ResponseTime)
}

func TestPipeline_InvalidBatchFailsWithoutCards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	bad := `{"flashcards":[{"front":"ok","back":"ok"},{"front":"","back":"missing front"}]}`
	p := newPipeline(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatReply(t, bad)))
	})

	userID := uuid.New()
	res, err := p.generations.Initiate(ctx, userID, strings.Repeat("b", 2000))
	require.NoError(t, err)
	require.NoError(t, p.runner.Stop(ctx))

	snap, err := p.generations.Snapshot(ctx, userID, res.GenerationID)
	require.NoError(t, err)
	assert.Equal(t, domain.GenerationStatusFailed, snap.Status)
	assert.Empty(t, snap.Proposals)
	assert.Equal(t, string(generation.CategoryGeneric), *snap.Log.ErrorCode)
}

func TestPipeline_SubmitAfterStopFailsImmediately(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p := newPipeline(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	require.NoError(t, p.runner.Stop(ctx))

	userID := uuid.New()
	res, err := p.generations.Initiate(ctx, userID, strings.Repeat("c", 1000))
	require.NoError(t, err)

	snap, err := p.generations.Snapshot(ctx, userID, res.GenerationID)
	require.NoError(t, err)
	assert.Equal(t, domain.GenerationStatusFailed, snap.Status)
}

func TestPipeline_PollInProcessUntilCompleted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	release := make(chan struct{})
	p := newPipeline(t, func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatReply(t, `{"flashcards":[{"front":"Q","back":"A"}]}`)))
	})

	userID := uuid.New()
	res, err := p.generations.Initiate(ctx, userID, strings.Repeat("d", 1200))
	require.NoError(t, err)

	updates := make(chan poll.Update, 64)
	syncer, err := poll.New(p.generations.SnapshotFetcher(userID), func(u poll.Update) { updates <- u }, poll.Config{
		Interval:    10 * time.Millisecond,
		MaxDuration: 10 * time.Second,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(syncer.Stop)
	syncer.Start(ctx, res.GenerationID)

	first := <-updates
	assert.Equal(t, domain.GenerationStatusProcessing, first.Snapshot.Status)
	close(release)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case u := <-updates:
			if !u.Final {
				continue
			}
			assert.False(t, u.TimedOut)
			assert.Equal(t, domain.GenerationStatusCompleted, u.Snapshot.Status)
			assert.Len(t, u.Snapshot.Proposals, 1)
			return
		case <-deadline:
			t.Fatal("generation never completed")
		}
	}
}
