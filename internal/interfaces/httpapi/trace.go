package httpapi

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("esport-notifier/internal/interfaces/httpapi")

// startHandlerSpan opens "httpapi.Handler.<handler>" under the otelhttp request
// span. Probe routes are filtered out of tracing, so a missing parent means
// nothing should be recorded.
func startHandlerSpan(ctx context.Context, handler string) (context.Context, trace.Span) {
	if handler == "" || !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}

	attrs := []attribute.KeyValue{attribute.String("http.handler", handler)}
	if p, ok := principalFrom(ctx); ok {
		attrs = append(attrs, attribute.String("enduser.id", p.UserID))
	}
	return apiTracer.Start(ctx, "httpapi.Handler."+handler, trace.WithAttributes(attrs...))
}
