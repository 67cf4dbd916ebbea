package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrRunnerNotStarted is returned by Submit before Start.
var ErrRunnerNotStarted = errors.New("task runner not started")

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount is the number of concurrent workers
	WorkerCount int

	// QueueSize is the maximum number of queued tasks
	QueueSize int
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with default values
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 4,
		QueueSize:   100,
	}
}

// TaskRunner owns a queue and the worker pool draining it.
type TaskRunner struct {
	queue   *TaskQueue
	pool    *WorkerPool
	logger  *slog.Logger
	mu      sync.Mutex
	started bool
	stopped bool
}

// NewTaskRunner creates a TaskRunner. Unset fields of config take the
// values of DefaultTaskRunnerConfig. Call Start before submitting.
func NewTaskRunner(config TaskRunnerConfig, log *slog.Logger) *TaskRunner {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "task_runner")

	defaults := DefaultTaskRunnerConfig()
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}

	queue := NewTaskQueue(config.QueueSize, log)
	return &TaskRunner{
		queue:  queue,
		pool:   NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, log),
		logger: log,
	}
}

// SetErrorHandler sets the handler for task errors. Call before Start.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Start launches the workers. Calling it again has no effect.
func (r *TaskRunner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.pool.Start()
}

// Submit queues a task. It returns ErrQueueFull or ErrQueueClosed when the
// task is refused.
func (r *TaskRunner) Submit(_ context.Context, task Task) error {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return ErrRunnerNotStarted
	}
	return r.queue.Enqueue(task)
}

// Stop stops accepting tasks and waits for queued and running tasks to
// finish. If ctx ends first, Stop returns ctx.Err() and the workers keep
// draining in the background.
func (r *TaskRunner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	r.mu.Unlock()

	r.queue.Close()

	done := make(chan struct{})
	go func() {
		r.pool.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("task runner drained")
		return nil
	case <-ctx.Done():
		r.logger.Warn("task runner stop timed out", "remaining", r.queue.Len())
		return ctx.Err()
	}
}
