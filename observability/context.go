package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/wirekit/logger"
)

// LoggingContext returns ctx enriched with the active span's trace and
// span IDs so logger.WithContext picks them up. Without a valid span the
// context is returned unchanged.
func LoggingContext(ctx context.Context) context.Context {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ctx
	}
	return logger.ContextWithTrace(ctx, sc.TraceID().String(), sc.SpanID().String())
}

// StartOperation starts a span named "{service}.{operation}" and returns
// a context carrying both the span and its IDs for log correlation.
func StartOperation(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, service+"."+operation)
	span.SetAttributes(
		attribute.String(AttrServiceName, service),
		attribute.String(AttrOperationName, operation),
	)
	return LoggingContext(ctx), span
}

// EndOperation records err on the span when non-nil and ends it.
func EndOperation(span trace.Span, err error) {
	if err != nil && span.IsRecording() {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	span.End()
}
