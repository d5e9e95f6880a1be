package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task is a unit of periodic work. Errors are logged, never fatal.
type Task func(ctx context.Context) error

// Scheduler runs named tasks on fixed intervals with single-flight semantics:
// each task executes sequentially inside its own loop, so a tick that elapses
// while the previous pass is still running never overlaps it. Panics are
// recovered at the tick boundary so one bad pass cannot kill the loop.
type Scheduler struct {
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// New constructs a Scheduler. Stop cancels all loops and waits for them.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{logger: logger, ctx: ctx, cancel: cancel}
}

// Every registers a task to run on the given interval. The first run happens
// after one full interval, not immediately.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) error {
	if interval <= 0 {
		return fmt.Errorf("task %s: interval must be positive", name)
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already stopped")
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loop(name, interval, task)
	return nil
}

func (s *Scheduler) loop(name string, interval time.Duration, task Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(name, task)
		}
	}
}

func (s *Scheduler) runOnce(name string, task Task) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panicked", slog.String("task", name), slog.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := task(s.ctx); err != nil {
		s.logger.Warn("task failed", slog.String("task", name), slog.Any("error", err))
		return
	}
	s.logger.Debug("task completed", slog.String("task", name), slog.Duration("elapsed", time.Since(start)))
}

// Stop cancels every loop and blocks until all in-flight passes finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
