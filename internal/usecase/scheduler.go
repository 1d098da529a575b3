package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsDesk/internal/logging"
	"NewsDesk/internal/ports"
)

// Scheduler runs periodic ingests on a ports.Scheduler driver.
type Scheduler struct {
	driver   ports.Scheduler
	ingestor *Ingestor
	days     int
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring ingests of the last
// days days.
func NewScheduler(driver ports.Scheduler, ingestor *Ingestor, days int, log *slog.Logger) *Scheduler {
	if log == nil {
		log = logging.Discard()
	}
	return &Scheduler{driver: driver, ingestor: ingestor, days: ClampDays(days), logger: log}
}

// Start registers the ingest job with the driver. Failed runs are logged and
// retried on the next tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.ingestor == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := s.ingestor.Ingest(ctx, s.days); err != nil {
			s.logger.Warn("scheduled ingest failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
