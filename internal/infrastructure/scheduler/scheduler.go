package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ontiuk/eskimo-sync/internal/domain/shared"
	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/config"
)

// SyncRunner is the application surface the scheduled jobs drive
type SyncRunner interface {
	SyncCategories(ctx context.Context) (*syncdomain.Result, error)
	SyncProducts(ctx context.Context) (*syncdomain.Result, error)
	SyncModifiedProducts(ctx context.Context, unit string, amount int64) (*syncdomain.Result, error)
	SyncSkus(ctx context.Context, unit string, amount int64) (*syncdomain.Result, error)
	ExportPendingOrders(ctx context.Context) (*syncdomain.Result, error)
}

// Scheduler drives the recurring sync passes off cron schedules. Each job
// runs with its own timeout; overlap protection comes from the sync lease,
// so a pass that collides with a manual trigger is skipped, not queued.
type Scheduler struct {
	cron   *cron.Cron
	cfg    config.SchedulerConfig
	runner SyncRunner
	logger *zap.Logger
}

// New creates a scheduler from the configured cron expressions
func New(cfg config.SchedulerConfig, runner SyncRunner, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		cfg:    cfg,
		runner: runner,
		logger: logger.Named("scheduler"),
	}

	jobs := []struct {
		name     string
		schedule string
		run      func(ctx context.Context) (*syncdomain.Result, error)
	}{
		{"catalog_sync", cfg.CatalogCronSchedule, s.runCatalogSync},
		{"modified_sync", cfg.ModifiedCronSchedule, s.runModifiedSync},
		{"order_export", cfg.OrderCronSchedule, runner.ExportPendingOrders},
	}
	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.schedule, s.wrap(job.name, job.run)); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start begins firing jobs on their schedules
func (s *Scheduler) Start() {
	if !s.cfg.Enabled {
		s.logger.Info("scheduler disabled")
		return
	}
	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("catalog", s.cfg.CatalogCronSchedule),
		zap.String("modified", s.cfg.ModifiedCronSchedule),
		zap.String("orders", s.cfg.OrderCronSchedule),
	)
}

// Stop halts scheduling and waits for any running job to finish
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
		return ctx.Err()
	}
}

// runCatalogSync runs the nightly full catalog pass, categories before
// products so new categories are mapped by the time products reference them.
func (s *Scheduler) runCatalogSync(ctx context.Context) (*syncdomain.Result, error) {
	result, err := s.runner.SyncCategories(ctx)
	if err != nil {
		return result, err
	}
	return s.runner.SyncProducts(ctx)
}

// runModifiedSync refreshes products and SKU pricing touched in the
// configured lookback window
func (s *Scheduler) runModifiedSync(ctx context.Context) (*syncdomain.Result, error) {
	window := int64(s.cfg.ModifiedWindowHours)
	result, err := s.runner.SyncModifiedProducts(ctx, syncdomain.UnitHours, window)
	if err != nil {
		return result, err
	}
	return s.runner.SyncSkus(ctx, syncdomain.UnitHours, window)
}

// wrap adds the timeout, skip handling and result logging around a job
func (s *Scheduler) wrap(name string, run func(ctx context.Context) (*syncdomain.Result, error)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
		defer cancel()

		log := s.logger.With(zap.String("job", name))
		started := time.Now()

		result, err := run(ctx)
		if err != nil {
			if errors.Is(err, shared.ErrSyncInProgress) {
				log.Warn("job skipped, another run holds the lease")
				return
			}
			log.Error("job failed", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
			return
		}

		log.Info("job completed",
			zap.Duration("elapsed", time.Since(started)),
			zap.String("status", string(result.Status)),
			zap.Int("total", result.TotalCount),
			zap.Int("imported", result.ImportedCount),
			zap.Int("skipped", result.SkippedCount),
			zap.Int("failed", result.FailedCount),
		)
	}
}
