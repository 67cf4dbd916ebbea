package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-gen/internal/events"
)

// Submitter accepts tasks for background execution.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// GenerationEventHandler turns generation.requested events into
// GenerationTasks and submits them. A refused submission is returned to the
// emitter so the caller can fail the generation.
type GenerationEventHandler struct {
	factory *GenerationTaskFactory
	runner  Submitter
	logger  *slog.Logger
}

var _ events.EventHandler = (*GenerationEventHandler)(nil)

// NewGenerationEventHandler creates a GenerationEventHandler.
func NewGenerationEventHandler(
	factory *GenerationTaskFactory,
	runner Submitter,
	log *slog.Logger,
) *GenerationEventHandler {
	if log == nil {
		log = slog.Default()
	}
	return &GenerationEventHandler{
		factory: factory,
		runner:  runner,
		logger:  log.With("component", "generation_event_handler"),
	}
}

// HandleEvent implements events.EventHandler.
func (h *GenerationEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event.Type != events.EventTypeGenerationRequested {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.GenerationRequested
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return err
	}

	task := h.factory.CreateTask(payload.GenerationID, payload.UserID, payload.InputText)
	if err := h.runner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"generation_id", payload.GenerationID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit generation task: %w", err)
	}

	h.logger.Debug("generation task submitted",
		"task_id", task.ID(),
		"generation_id", payload.GenerationID,
		"event_id", event.ID)
	return nil
}
