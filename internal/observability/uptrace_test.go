package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/esport-notifier/internal/config"
	"github.com/riskibarqy/esport-notifier/internal/platform/logging"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cases := []config.Config{
		{UptraceEnabled: false, ServiceName: "esport-notifier", AppEnv: config.EnvDev},
		{UptraceEnabled: true, UptraceDSN: " ", ServiceName: "esport-notifier", AppEnv: config.EnvDev},
	}
	for _, cfg := range cases {
		core, shutdown, err := InitUptrace(cfg, logging.NewNop())
		if err != nil {
			t.Fatalf("init uptrace: %v", err)
		}
		if core != nil {
			t.Fatalf("expected no log core when uptrace is disabled")
		}
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("shutdown uptrace: %v", err)
		}
	}
}
