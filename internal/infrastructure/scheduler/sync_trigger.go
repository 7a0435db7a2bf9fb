// Package scheduler runs Tally syncs on a fixed interval inside the API server.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Runner performs one scheduled sync
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a plain function to Runner
type RunnerFunc func(ctx context.Context) error

// Run implements Runner
func (f RunnerFunc) Run(ctx context.Context) error { return f(ctx) }

// SyncTriggerConfig holds configuration for the sync trigger
type SyncTriggerConfig struct {
	Interval   time.Duration
	RunTimeout time.Duration // zero means no per-run deadline
	RunOnStart bool
}

// SyncTrigger fires the runner every Interval. Runs never overlap: a tick
// that lands while a run is in flight is skipped.
type SyncTrigger struct {
	config SyncTriggerConfig
	runner Runner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inFlight  atomic.Bool

	lastRun  time.Time
	lastErr  error
	runCount int
}

// NewSyncTrigger creates a new sync trigger
func NewSyncTrigger(config SyncTriggerConfig, runner Runner, logger *zap.Logger) (*SyncTrigger, error) {
	if config.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive, got %s", ErrInvalidConfig, config.Interval)
	}
	if runner == nil {
		return nil, fmt.Errorf("%w: runner is required", ErrInvalidConfig)
	}
	return &SyncTrigger{
		config: config,
		runner: runner,
		logger: logger.Named("scheduler"),
	}, nil
}

// Start starts the trigger loop
func (t *SyncTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Sync trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Bool("run_on_start", t.config.RunOnStart),
	)
	return nil
}

// Stop stops the loop and waits for an in-flight run, bounded by ctx
func (t *SyncTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Sync trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *SyncTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	if t.config.RunOnStart {
		t.fire(ctx)
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.fire(ctx)
		}
	}
}

func (t *SyncTrigger) fire(ctx context.Context) {
	err := t.TriggerNow(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrSyncInProgress):
		t.logger.Debug("Skipping scheduled sync, previous run still in progress")
	default:
		t.logger.Warn("Scheduled sync failed", zap.Error(err))
	}
}

// TriggerNow runs the sync synchronously. It returns ErrSyncInProgress
// without running when another run has not finished.
func (t *SyncTrigger) TriggerNow(ctx context.Context) error {
	if !t.inFlight.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer t.inFlight.Store(false)

	if t.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.RunTimeout)
		defer cancel()
	}

	start := time.Now()
	err := t.runner.Run(ctx)

	t.mu.Lock()
	t.lastRun = start
	t.lastErr = err
	t.runCount++
	t.mu.Unlock()

	t.logger.Info("Scheduled sync finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("ok", err == nil),
	)
	return err
}

// LastRun reports when the latest run started and how it ended
func (t *SyncTrigger) LastRun() (time.Time, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastRun, t.lastErr
}

// RunCount returns how many runs have completed
func (t *SyncTrigger) RunCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runCount
}
