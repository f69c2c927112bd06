package sweeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/adapter"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

const (
	DEFAULT_WORKER_POOL_SIZE = 4
	DEFAULT_QUEUE_SIZE       = 128
)

// propertyTask is the per-property work of one cycle
type propertyTask func(ctx context.Context, property *schema.Property) error

// scheduledSweeper runs a property fan-out on a cron schedule
type scheduledSweeper struct {
	name      string
	config    Config
	source    Source
	clock     adapter.Clock
	task      propertyTask
	include   func(ctx context.Context, property *schema.Property) (bool, error)
	prepare   func(ctx context.Context, summary *RunSummary) error
	running   atomic.Bool
	cycling   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

func newScheduledSweeper(name string, config Config, source Source, clock adapter.Clock, task propertyTask) *scheduledSweeper {
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = DEFAULT_WORKER_POOL_SIZE
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DEFAULT_QUEUE_SIZE
	}
	return &scheduledSweeper{
		name:      name,
		config:    config,
		source:    source,
		clock:     clock,
		task:      task,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *scheduledSweeper) Name() string {
	return s.name
}

// Start schedules cycles and blocks until the context is canceled or Stop is called
func (s *scheduledSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh) // Signal that we've stopped
	}()

	ctx = logger.WithFields(ctx, zap.String("sweeper", s.name))
	logger.InfoCtx(ctx, "Starting sweeper",
		zap.String("schedule", s.config.Schedule),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
	)

	scheduler := cron.New(cron.WithLocation(time.UTC))
	_, err := scheduler.AddFunc(s.config.Schedule, func() {
		// Skip a tick while the previous cycle is still running
		if !s.cycling.CompareAndSwap(false, true) {
			logger.WarnCtx(ctx, "Previous cycle still running, skipping")
			return
		}
		defer s.cycling.Store(false)

		if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.config.Schedule, err)
	}
	scheduler.Start()

	select {
	case <-ctx.Done():
		logger.InfoCtx(ctx, "Sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
	case <-s.stopChan:
		logger.InfoCtx(ctx, "Sweeper stop requested")
	}

	// Wait for a running cycle to finish
	<-scheduler.Stop().Done()
	return nil
}

// Stop gracefully stops the sweeper with timeout support
func (s *scheduledSweeper) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return nil // Not running
	}

	logger.InfoCtx(ctx, "Stopping sweeper", zap.String("sweeper", s.name))
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}

	// Wait for main loop to exit, but respect context cancellation
	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Sweeper stopped gracefully", zap.String("sweeper", s.name))
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Sweeper stop interrupted by context timeout", zap.String("sweeper", s.name))
		return ctx.Err()
	}
}

// RunOnce runs the task for every included active property on a worker
// pool and records the run marker
func (s *scheduledSweeper) RunOnce(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{Sweeper: s.name, StartedAt: s.clock.Now()}
	logger.InfoCtx(ctx, "Starting sweep cycle", zap.String("sweeper", s.name))

	if s.prepare != nil {
		if err := s.prepare(ctx, summary); err != nil {
			return nil, err
		}
	}

	properties, err := s.source.ListActiveProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active properties: %w", err)
	}

	pool := pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.QueueSize),
		pond.WithContext(ctx),
	)

	var processed, skipped, failed atomic.Int32
	for i := range properties {
		property := &properties[i]
		pool.Submit(func() {
			propertyCtx := logger.WithFields(ctx, zap.String("propertyID", property.ID.String()))

			if s.include != nil {
				ok, err := s.include(propertyCtx, property)
				if err != nil {
					failed.Add(1)
					logger.ErrorCtx(propertyCtx, err)
					return
				}
				if !ok {
					skipped.Add(1)
					return
				}
			}

			if err := s.task(propertyCtx, property); err != nil {
				failed.Add(1)
				logger.ErrorCtx(propertyCtx, err)
				return
			}
			processed.Add(1)
		})
	}

	// Wait for all tasks to complete
	pool.StopAndWait()

	summary.Properties = int(processed.Load())
	summary.Skipped = int(skipped.Load())
	summary.Failed = int(failed.Load())
	summary.FinishedAt = s.clock.Now()

	if err := s.saveRunMarkerWithRetry(ctx, summary); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to save run marker: %w", err), zap.String("sweeper", s.name))
	}

	logger.InfoCtx(ctx, "Sweep cycle completed",
		zap.String("sweeper", s.name),
		zap.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
		zap.Int("properties", summary.Properties),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// saveRunMarkerWithRetry stores the run summary with exponential backoff
func (s *scheduledSweeper) saveRunMarkerWithRetry(ctx context.Context, summary *RunSummary) error {
	value, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		return s.source.SetKeyValue(ctx, RunMarkerKey(s.name), string(value))
	}
	notifyOnError := func(err error, next time.Duration) {
		logger.WarnCtx(ctx, "Run marker write failed, retrying",
			zap.Error(err),
			zap.Duration("next_retry_in", next),
		)
	}
	return backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notifyOnError)
}
