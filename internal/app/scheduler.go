package app

import (
	"context"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
	"github.com/riskibarqy/esport-notifier/internal/usecase"
)

type SweepRunner interface {
	Run(ctx context.Context) (usecase.SweepResult, error)
}

// RunSchedule runs one sweep immediately and then one per interval until ctx
// is cancelled. A failed sweep is logged and the schedule continues. Ticks
// that fire while a sweep is still running are dropped.
func RunSchedule(ctx context.Context, runner SweepRunner, interval time.Duration, logger *logging.Logger) {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.InfoContext(ctx, "scheduler started", "interval", interval.String())
	for {
		runScheduledSweep(ctx, runner, logger)

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			logger.Info("scheduler stopped")
			return
		}
	}
}

func runScheduledSweep(ctx context.Context, runner SweepRunner, logger *logging.Logger) {
	started := time.Now()
	result, err := runner.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.ErrorContext(ctx, "scheduled sweep failed",
			"error", err,
			"partial_errors", result.PartialErrors,
			"elapsed", time.Since(started).String(),
		)
		return
	}
	logger.InfoContext(ctx, "scheduled sweep completed",
		"run_id", result.RunID,
		"matches", result.MatchCount,
		"notifications", result.NotificationCount,
		"failed", result.FailedCount,
		"elapsed", time.Since(started).String(),
	)
}
