package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProjectLister provides the projects to reconcile
type ProjectLister interface {
	ProjectIDs(ctx context.Context) ([]uuid.UUID, error)
}

// ProjectListerFunc adapts a function to ProjectLister
type ProjectListerFunc func(ctx context.Context) ([]uuid.UUID, error)

// ProjectIDs calls f
func (f ProjectListerFunc) ProjectIDs(ctx context.Context) ([]uuid.UUID, error) { return f(ctx) }

// IntervalTrigger submits a reconciliation of every project at a fixed interval
type IntervalTrigger struct {
	interval  time.Duration
	scheduler *Scheduler
	projects  ProjectLister
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewIntervalTrigger creates a new trigger
func NewIntervalTrigger(interval time.Duration, scheduler *Scheduler, projects ProjectLister, logger *zap.Logger) *IntervalTrigger {
	return &IntervalTrigger{
		interval:  interval,
		scheduler: scheduler,
		projects:  projects,
		logger:    logger,
	}
}

// Start starts the trigger loop
func (t *IntervalTrigger) Start(ctx context.Context) error {
	if t.interval <= 0 {
		return ErrInvalidConfig
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isRunning {
		return nil
	}
	t.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Budget reconciliation trigger started", zap.Duration("interval", t.interval))
	return nil
}

// Stop stops the trigger loop
func (t *IntervalTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	cancel := t.cancel
	t.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Budget reconciliation trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *IntervalTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := t.RunOnce(ctx); err != nil {
				t.logger.Error("Budget reconciliation round failed", zap.Error(err))
			}
		}
	}
}

// RunOnce queues a job for every project and returns how many were queued
func (t *IntervalTrigger) RunOnce(ctx context.Context) (int, error) {
	ids, err := t.projects.ProjectIDs(ctx)
	if err != nil {
		return 0, err
	}
	queued, err := t.scheduler.Schedule(ids)
	t.logger.Info("Budget reconciliation round scheduled",
		zap.Int("projects", len(ids)),
		zap.Int("queued", queued),
	)
	return queued, err
}
