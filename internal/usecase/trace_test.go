package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartUsecaseSpan_WithoutParentKeepsContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	got, span := startUsecaseSpan(ctx, "usecase.NotificationSweepService.Run")
	defer span.End()

	if got != ctx {
		t.Fatalf("expected context to be returned unchanged")
	}
	if span.SpanContext().IsValid() {
		t.Fatalf("expected a non-recording span without a parent")
	}
}

func TestEndSpan_StatusByErrorKind(t *testing.T) {
	t.Parallel()

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tracer := tp.Tracer("test")

	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "ok", err: nil, want: codes.Unset},
		{name: "caller", err: fmt.Errorf("%w: subject is required", ErrInvalidInput), want: codes.Unset},
		{name: "dependency", err: fmt.Errorf("aggregate matches: %w", ErrAllSourcesFailed), want: codes.Error},
		{name: "plain", err: errors.New("boom"), want: codes.Error},
	}
	for _, tc := range cases {
		_, span := tracer.Start(context.Background(), tc.name)
		endSpan(span, tc.err)
	}

	ended := rec.Ended()
	if len(ended) != len(cases) {
		t.Fatalf("expected %d ended spans, got %d", len(cases), len(ended))
	}
	for i, tc := range cases {
		if got := ended[i].Status().Code; got != tc.want {
			t.Fatalf("%s: expected status %v, got %v", tc.name, tc.want, got)
		}
	}
}
