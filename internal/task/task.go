package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskTypeGeneration identifies the background continuation of a generation.
const TaskTypeGeneration = "generation"

// Task is a unit of background work.
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Execute runs the task. The returned error is reported to the runner's
	// error handler; a task is responsible for recording its own outcome.
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read access to queued tasks.
type TaskQueueReader interface {
	// GetChannel returns a channel that is closed once the queue is closed
	// and drained.
	GetChannel() <-chan Task
}

// TaskQueueWriter accepts tasks.
type TaskQueueWriter interface {
	// Enqueue adds a task without blocking.
	Enqueue(task Task) error

	// Close stops accepting tasks.
	Close()
}
