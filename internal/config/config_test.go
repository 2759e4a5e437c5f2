package config

import (
	"testing"
	"time"

	"github.com/riskibarqy/esport-notifier/internal/domain/match"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.NotifyHorizon != 5*time.Minute {
		t.Fatalf("unexpected NotifyHorizon: %s", cfg.NotifyHorizon)
	}
	if cfg.NotifyAPIKeyHeader != "X-API-Key" {
		t.Fatalf("unexpected NotifyAPIKeyHeader: %q", cfg.NotifyAPIKeyHeader)
	}
	if len(cfg.NotifyGames) != 5 {
		t.Fatalf("expected all games by default, got %v", cfg.NotifyGames)
	}
	if len(cfg.NotifyPhases) != 2 || cfg.NotifyPhases[0] != match.PhaseRunning || cfg.NotifyPhases[1] != match.PhaseUpcoming {
		t.Fatalf("unexpected default phases: %v", cfg.NotifyPhases)
	}
	if cfg.PandaScorePageSize != 50 {
		t.Fatalf("unexpected page size: %d", cfg.PandaScorePageSize)
	}
	if cfg.NotifyMaxConcurrentSends != 1 {
		t.Fatalf("expected sequential sends by default, got %d", cfg.NotifyMaxConcurrentSends)
	}
	if cfg.NotifyLedgerBackend != StoragePostgres {
		t.Fatalf("ledger backend should follow storage backend, got %q", cfg.NotifyLedgerBackend)
	}
	if !cfg.PandaScoreCircuit.Enabled || cfg.PandaScoreCircuit.FailureThreshold != 5 {
		t.Fatalf("unexpected circuit defaults: %+v", cfg.PandaScoreCircuit)
	}
	if cfg.NotifyLocation == nil {
		t.Fatalf("expected notification location")
	}
	if cfg.NotifySendConfirmation {
		t.Fatalf("confirmation mail should be off by default")
	}
}

func TestLoad_MissingSweepCredentialsDoNotFailLoad(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PANDASCORE_TOKEN", "")
	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("NOTIFY_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	missing := cfg.MissingSweepCredentials()
	if len(missing) != 2 || missing[0] != "PANDASCORE_TOKEN" || missing[1] != "NOTIFY_API_KEY" {
		t.Fatalf("unexpected missing credentials: %v", missing)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "uptrace without dsn", env: map[string]string{"UPTRACE_ENABLED": "true"}},
		{name: "betterstack without endpoint", env: map[string]string{"BETTERSTACK_ENABLED": "true"}},
		{name: "unknown game", env: map[string]string{"NOTIFY_GAMES": "lol,chess"}},
		{name: "unknown phase", env: map[string]string{"NOTIFY_PHASES": "later"}},
		{name: "bad horizon", env: map[string]string{"NOTIFY_HORIZON": "-1m"}},
		{name: "bad timezone", env: map[string]string{"NOTIFY_TIMEZONE": "Mars/Olympus"}},
		{name: "redis ledger without url", env: map[string]string{"NOTIFY_LEDGER_BACKEND": "redis"}},
		{name: "postgres ledger on memory storage", env: map[string]string{"STORAGE_BACKEND": "memory", "NOTIFY_LEDGER_BACKEND": "postgres"}},
		{name: "zero concurrency", env: map[string]string{"NOTIFY_MAX_CONCURRENT_SENDS": "0"}},
		{name: "bad circuit count", env: map[string]string{"RESEND_CIRCUIT_FAILURE_COUNT": "0"}},
		{name: "qstash without secret", env: map[string]string{"QSTASH_ENABLED": "true", "QSTASH_TOKEN": "t", "QSTASH_TARGET_BASE_URL": "https://api.example.com"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoad_NotificationOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvStage)
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("NOTIFY_GAMES", "league-of-legends, valorant")
	t.Setenv("NOTIFY_PHASES", "upcoming")
	t.Setenv("NOTIFY_HORIZON", "10m")
	t.Setenv("NOTIFY_TIMEZONE", "UTC")
	t.Setenv("NOTIFY_API_KEY_HEADER", "X-Cron-Secret")
	t.Setenv("BETTERSTACK_MIN_LEVEL", "warn")
	t.Setenv("NOTIFY_SEND_CONFIRMATION", "true")
	t.Setenv("RESEND_CIRCUIT_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.NotifyGames) != 2 || cfg.NotifyGames[0] != match.GameLoL {
		t.Fatalf("unexpected games: %v", cfg.NotifyGames)
	}
	if cfg.NotifyHorizon != 10*time.Minute {
		t.Fatalf("unexpected horizon: %s", cfg.NotifyHorizon)
	}
	if cfg.NotifyLedgerBackend != StorageMemory {
		t.Fatalf("unexpected ledger backend: %q", cfg.NotifyLedgerBackend)
	}
	if cfg.NotifyLocation.String() != "UTC" {
		t.Fatalf("unexpected location: %s", cfg.NotifyLocation)
	}
	if cfg.BetterStackMinLevel.String() != "warn" {
		t.Fatalf("unexpected BetterStackMinLevel: %s", cfg.BetterStackMinLevel)
	}
	if !cfg.NotifySendConfirmation {
		t.Fatalf("expected confirmation mail to be enabled")
	}
	if got := cfg.ResendCircuit.String(); got != "disabled" {
		t.Fatalf("unexpected resend circuit: %s", got)
	}
}

func TestParseUptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Parallel()

	got := parseUptraceDSNFromOTLPHeaders(`x-other=1, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)
	if got != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected dsn: %q", got)
	}
	if parseUptraceDSNFromOTLPHeaders("") != "" {
		t.Fatalf("expected empty dsn")
	}
}
