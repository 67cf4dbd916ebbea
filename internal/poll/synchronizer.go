package poll

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/phrazzld/scry-gen/internal/domain"
)

// Fetcher reads the current snapshot of a generation.
type Fetcher interface {
	FetchSnapshot(ctx context.Context, generationID uuid.UUID) (*domain.GenerationSnapshot, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, generationID uuid.UUID) (*domain.GenerationSnapshot, error)

// FetchSnapshot calls f(ctx, generationID).
func (f FetcherFunc) FetchSnapshot(ctx context.Context, generationID uuid.UUID) (*domain.GenerationSnapshot, error) {
	return f(ctx, generationID)
}

// Update is delivered to OnUpdate after every successful fetch and once more
// on timeout.
type Update struct {
	GenerationID uuid.UUID
	// Snapshot is the latest snapshot; on timeout it may be nil if no fetch
	// ever succeeded.
	Snapshot *domain.GenerationSnapshot
	// TimedOut is set when polling gave up before a terminal status.
	TimedOut bool
	// Final is set on the last update a loop delivers.
	Final bool
	// Elapsed is the time since Start.
	Elapsed time.Duration
	// Stop cancels the loop that delivered this update without waiting for
	// it. Use it instead of Synchronizer.Stop inside OnUpdate.
	Stop func()
}

// Config configures a Synchronizer. Zero values take the defaults.
type Config struct {
	Interval    time.Duration
	MaxDuration time.Duration
	Clock       clockwork.Clock
	Logger      *slog.Logger
}

// ErrNilFetcher is returned by New when no fetcher is given.
var ErrNilFetcher = errors.New("fetcher cannot be nil")

// Synchronizer polls one generation at a time. Its methods are safe for
// concurrent use. Inside OnUpdate, call Update.Stop or Start; Synchronizer.Stop
// waits for the delivering loop and would block forever.
type Synchronizer struct {
	fetcher     Fetcher
	interval    time.Duration
	maxDuration time.Duration
	clock       clockwork.Clock
	logger      *slog.Logger
	onUpdate    func(Update)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	latest  *domain.GenerationSnapshot
	running bool
}

// New creates a Synchronizer. onUpdate may be nil.
func New(fetcher Fetcher, onUpdate func(Update), cfg Config) (*Synchronizer, error) {
	if fetcher == nil {
		return nil, ErrNilFetcher
	}
	if cfg.Interval <= 0 {
		cfg.Interval = domain.PollInterval
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = domain.MaxPollDuration
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}

	closed := make(chan struct{})
	close(closed)

	return &Synchronizer{
		fetcher:     fetcher,
		interval:    cfg.Interval,
		maxDuration: cfg.MaxDuration,
		clock:       cfg.Clock,
		logger:      cfg.Logger.With("component", "poll_synchronizer"),
		onUpdate:    onUpdate,
		done:        closed,
	}, nil
}

// Start begins polling generationID and cancels any loop already running.
// Start does not block: the new loop waits for the previous one to exit
// before its first fetch, so callbacks of two loops never overlap. The first
// fetch happens immediately after that. The loop ends when ctx is cancelled,
// Stop is called, a terminal status is seen, or MaxDuration is exceeded.
func (s *Synchronizer) Start(ctx context.Context, generationID uuid.UUID) {
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	prevCancel, prevDone := s.cancel, s.done
	s.cancel = cancel
	s.done = done
	s.latest = nil
	s.running = true
	s.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
	}
	go s.loop(loopCtx, cancel, prevDone, done, generationID)
}

// Stop cancels the running loop and waits for it to exit. Stop on an idle
// Synchronizer returns at once. It must not be called from OnUpdate.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-done
}

// Latest returns the most recent snapshot, or nil before the first
// successful fetch.
func (s *Synchronizer) Latest() *domain.GenerationSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Running reports whether a loop is active.
func (s *Synchronizer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Done returns a channel closed when the current loop exits.
func (s *Synchronizer) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Synchronizer) loop(ctx context.Context, cancel context.CancelFunc, prev <-chan struct{}, done chan struct{}, generationID uuid.UUID) {
	log := s.logger.With("generation_id", generationID)
	defer func() {
		cancel()
		s.mu.Lock()
		if s.done == done {
			s.running = false
		}
		s.mu.Unlock()
		close(done)
	}()

	<-prev
	if ctx.Err() != nil {
		return
	}

	start := s.clock.Now()
	for {
		elapsed := s.clock.Since(start)
		if elapsed > s.maxDuration {
			log.Info("polling timed out", "elapsed", elapsed)
			s.deliver(ctx, cancel, Update{
				GenerationID: generationID,
				Snapshot:     s.Latest(),
				TimedOut:     true,
				Final:        true,
				Elapsed:      elapsed,
			})
			return
		}

		snap, err := s.fetcher.FetchSnapshot(ctx, generationID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Warn("snapshot fetch failed, retrying next tick", "error", err)
		} else {
			s.mu.Lock()
			if s.done == done {
				s.latest = snap
			}
			s.mu.Unlock()

			terminal := snap.Status.Terminal()
			s.deliver(ctx, cancel, Update{
				GenerationID: generationID,
				Snapshot:     snap,
				Final:        terminal,
				Elapsed:      s.clock.Since(start),
			})
			if terminal {
				log.Debug("polling finished", "status", snap.Status)
				return
			}
		}

		timer := s.clock.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}
	}
}

// deliver runs the callback unless the loop has been cancelled.
func (s *Synchronizer) deliver(ctx context.Context, cancel context.CancelFunc, u Update) {
	if ctx.Err() != nil {
		return
	}
	u.Stop = cancel
	s.onUpdate(u)
}
