package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("esport-notifier/internal/usecase")

// startUsecaseSpan opens a child of the request or sweep span. Background
// work without a recording parent gets the parent back unchanged so scheduler
// ticks do not start orphan traces.
func startUsecaseSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if name == "" || !parent.SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return usecaseTracer.Start(ctx, name)
}

// endSpan marks the span failed for dependency and configuration errors.
// Caller mistakes stay OK so they do not page anyone.
func endSpan(span trace.Span, err error) {
	if err != nil && !IsCallerError(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
