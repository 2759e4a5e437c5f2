package observability

import (
	"errors"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

func TestShouldSkipLogRecord(t *testing.T) {
	if !shouldSkipLogRecord("http request", map[string]any{"path": "/healthz"}) {
		t.Fatalf("expected health check log to be skipped")
	}
	if shouldSkipLogRecord("http request", map[string]any{"path": "/v1/notifications/sweep"}) {
		t.Fatalf("did not expect sweep request log to be skipped")
	}
	if shouldSkipLogRecord("reminder sent", map[string]any{"path": "/healthz"}) {
		t.Fatalf("did not expect non-request event to be skipped")
	}
}

func TestBuildOTelLogAttributes_SortedKeys(t *testing.T) {
	attrs := buildOTelLogAttributes(map[string]any{
		"match_id": int64(42),
		"game":     "lol",
		"sent":     true,
	})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "game" || attrs[0].Value.AsString() != "lol" {
		t.Fatalf("unexpected first attribute: %+v", attrs[0])
	}
	if attrs[1].Key != "match_id" || attrs[1].Value.AsInt64() != 42 {
		t.Fatalf("unexpected match_id attribute")
	}
	if attrs[2].Key != "sent" || !attrs[2].Value.AsBool() {
		t.Fatalf("unexpected sent attribute")
	}
}

func TestToOTelLogValue(t *testing.T) {
	if v := toOTelLogValue(map[string]any{"sent": int64(2), "failed": int64(0)}, 0); v.Kind() != otellog.KindMap || len(v.AsMap()) != 2 {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	if v := toOTelLogValue([]any{"lol/past: boom"}, 0); v.Kind() != otellog.KindSlice {
		t.Fatalf("expected slice value, got %s", v.Kind())
	}
	if v := toOTelLogValue(90*time.Second, 0); v.AsString() != "1m30s" {
		t.Fatalf("unexpected duration value: %q", v.AsString())
	}
	if v := toOTelLogValue(errors.New("boom"), 0); v.AsString() != "boom" {
		t.Fatalf("unexpected error value: %q", v.AsString())
	}
	if v := toOTelLogValue(nil, 0); v.Kind() != otellog.KindEmpty {
		t.Fatalf("expected empty value for nil")
	}
}

func TestOTelLogCore_WithKeepsParentFields(t *testing.T) {
	parent := newOTelLogCore(zapcore.InfoLevel, "test").(*otelLogCore)
	child := parent.With([]zapcore.Field{{Key: "run_id", Type: zapcore.StringType, String: "r1"}}).(*otelLogCore)

	if len(parent.fields) != 0 || len(child.fields) != 1 {
		t.Fatalf("With must not mutate the parent core")
	}
	if child.Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected level filtering to carry over")
	}
}
