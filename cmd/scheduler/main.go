package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/esport-notifier/internal/app"
	"github.com/riskibarqy/esport-notifier/internal/config"
)

// The scheduler runs reminder sweeps in-process for deployments without an
// external cron trigger.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, shutdownTelemetry, err := app.StartTelemetry(cfg, "scheduler")
	if err != nil {
		fmt.Fprintf(os.Stderr, "start telemetry: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, app.SchedulerConfig(cfg), logger)
	if err != nil {
		logger.Error("build app", "error", err)
		shutdownTelemetry(context.Background())
		os.Exit(1)
	}
	if missing := cfg.MissingSweepCredentials(); len(missing) > 0 {
		logger.Warn("sweeps will fail until credentials are set", "missing", missing)
	}

	app.RunSchedule(ctx, a.Sweeps, cfg.SchedulerInterval, logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Close(shutdownCtx); err != nil {
		logger.Warn("close storage failed", "error", err)
	}
	shutdownTelemetry(shutdownCtx)
}
