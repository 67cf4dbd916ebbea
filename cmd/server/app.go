package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-gen/internal/config"
	"github.com/phrazzld/scry-gen/internal/events"
	"github.com/phrazzld/scry-gen/internal/generation"
	"github.com/phrazzld/scry-gen/internal/platform/llm"
	"github.com/phrazzld/scry-gen/internal/platform/memstore"
	"github.com/phrazzld/scry-gen/internal/platform/postgres"
	"github.com/phrazzld/scry-gen/internal/service"
	"github.com/phrazzld/scry-gen/internal/service/auth"
	"github.com/phrazzld/scry-gen/internal/store"
	"github.com/phrazzld/scry-gen/internal/task"
)

// application holds the wired dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	generationStore    store.GenerationStore
	generationLogStore store.GenerationLogStore
	flashcardStore     store.FlashcardStore

	jwtService        auth.JWTService
	generationService *service.GenerationService
	flashcardService  *service.FlashcardService

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication wires stores, the provider client, services and the task
// runner. A nil db selects the in-memory store. On success the task runner is
// already started.
func newApplication(cfg *config.Config, log *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: log,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	if db == nil {
		mem := memstore.New()
		app.generationStore = mem.Generations()
		app.generationLogStore = mem.GenerationLogs()
		app.flashcardStore = mem.Flashcards()
	} else {
		app.generationStore = postgres.NewPostgresGenerationStore(db, log)
		app.generationLogStore = postgres.NewPostgresGenerationLogStore(db, log)
		app.flashcardStore = postgres.NewPostgresFlashcardStore(db, log)
	}

	client, err := llm.NewClient(llm.ConfigFromApp(cfg.LLM), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider client: %w", err)
	}
	prompts, err := generation.NewPromptBuilder(cfg.Generation.PromptTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt template: %w", err)
	}
	generator, err := generation.NewLLMGenerator(client, prompts, cfg.LLM.StrictSchema, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}
	log.Info("provider client initialized",
		"model", cfg.LLM.ModelName,
		"max_attempts", cfg.LLM.MaxAttempts,
		"strict_schema", cfg.LLM.StrictSchema)

	processor, err := service.NewResultProcessor(
		app.generationStore, app.generationLogStore, app.flashcardStore, nil, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create result processor: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(log)

	app.generationService, err = service.NewGenerationService(
		app.generationStore,
		app.generationLogStore,
		app.flashcardStore,
		app.eventEmitter,
		log,
		service.WithGenerationDB(db),
		service.WithGenerationConfig(service.GenerationConfig{
			MinInputChars:     cfg.Generation.MinInputChars,
			MaxInputChars:     cfg.Generation.MaxInputChars,
			MaxErrorInfoChars: cfg.Generation.MaxErrorInfoChars,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	app.flashcardService, err = service.NewFlashcardService(app.flashcardStore, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create flashcard service: %w", err)
	}

	app.taskRunner = task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, log)
	app.taskRunner.SetErrorHandler(func(t task.Task, err error) {
		log.Error("generation task failed", "task_id", t.ID(), "error", err)
	})

	factory, err := task.NewGenerationTaskFactory(generator, processor, app.generationService, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create task factory: %w", err)
	}
	app.eventEmitter.RegisterHandler(task.NewGenerationEventHandler(factory, app.taskRunner, log))
	app.taskRunner.Start()

	log.Info("application initialized",
		"workers", cfg.Task.WorkerCount,
		"queue_size", cfg.Task.QueueSize)
	return app, nil
}

// Run serves HTTP until ctx is canceled, then shuts down.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) shutdownTimeout() time.Duration {
	return time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
}

// cleanup drains background generations and closes the database.
func (app *application) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout())
	defer cancel()

	if app.taskRunner != nil {
		if err := app.taskRunner.Stop(ctx); err != nil {
			app.logger.Warn("task runner did not drain before shutdown", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
