package app

import (
	"context"
	"fmt"
	"os"

	"github.com/riskibarqy/esport-notifier/internal/config"
	"github.com/riskibarqy/esport-notifier/internal/observability"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
)

// StartTelemetry sets up tracing, log shipping and profiling for one binary
// and installs the resulting logger as the process default. role names the
// binary in logs and profiles.
func StartTelemetry(cfg config.Config, role string) (*logging.Logger, func(context.Context), error) {
	bootstrap := logging.NewJSON(cfg.LogLevel)

	otelCore, shutdownUptrace, err := observability.InitUptrace(cfg, bootstrap)
	if err != nil {
		return nil, nil, fmt.Errorf("init uptrace: %w", err)
	}

	logger, flushLogs, err := observability.InitBetterStackLogger(cfg, otelCore)
	if err != nil {
		_ = shutdownUptrace(context.Background())
		return nil, nil, fmt.Errorf("init betterstack: %w", err)
	}
	logger = logger.With("service", cfg.ServiceName, "role", role)
	logging.SetDefault(logger)

	stopProfiler, err := observability.InitPyroscope(cfg, role, logger)
	if err != nil {
		_ = flushLogs(context.Background())
		_ = shutdownUptrace(context.Background())
		return nil, nil, fmt.Errorf("init pyroscope: %w", err)
	}
	pprofServer := observability.StartPprofServer(cfg, logger)

	shutdown := func(ctx context.Context) {
		if err := observability.StopPprofServer(ctx, pprofServer, logger); err != nil {
			logger.Warn("stop pprof server failed", "error", err)
		}
		if err := stopProfiler(); err != nil {
			logger.Warn("stop pyroscope failed", "error", err)
		}
		if err := shutdownUptrace(ctx); err != nil {
			logger.Warn("shutdown uptrace failed", "error", err)
		}
		// The logger may be the only sink, so report its own failure on stderr.
		if err := flushLogs(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "flush logs: %v\n", err)
		}
	}
	return logger, shutdown, nil
}
