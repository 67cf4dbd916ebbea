package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/scry-gen/internal/metrics"
	"github.com/phrazzld/scry-gen/internal/platform/logger"
)

// WorkerPool executes tasks from a queue on a fixed number of goroutines.
// Workers exit once the queue channel is closed and empty.
type WorkerPool struct {
	// taskQueue is the source of tasks to be processed
	taskQueue TaskQueueReader

	// workerCount is the number of concurrent workers
	workerCount int

	wg     sync.WaitGroup
	logger *slog.Logger

	// errorHandler is called when a task returns an error or panics
	errorHandler func(task Task, err error)
}

// WorkerPoolConfig configures a WorkerPool.
type WorkerPoolConfig struct {
	// WorkerCount is the number of worker goroutines
	WorkerCount int
}

// NewWorkerPool creates a pool reading from taskQueue.
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, log *slog.Logger) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		log.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		logger:      log,
		errorHandler: func(task Task, err error) {
			log.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler replaces the default error handler. Call before Start.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the workers.
func (p *WorkerPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("worker pool started", "worker_count", p.workerCount)
}

// Wait blocks until every worker has exited.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)
	for task := range p.taskQueue.GetChannel() {
		p.run(task, id)
	}
	p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
}

func (p *WorkerPool) run(task Task, workerID int) {
	log := p.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)
	ctx := logger.WithLogger(context.Background(), log)

	defer func() {
		if r := recover(); r != nil {
			log.Error("task panicked", "panic", r)
			p.errorHandler(task, fmt.Errorf("task panicked: %v", r))
		}
	}()

	if q, ok := p.taskQueue.(interface{ Len() int }); ok {
		metrics.TaskQueueDepth.Set(float64(q.Len()))
	}

	log.Debug("processing task")
	if err := task.Execute(ctx); err != nil {
		p.errorHandler(task, err)
		return
	}
	log.Debug("task completed")
}
