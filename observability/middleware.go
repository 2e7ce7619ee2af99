package observability

import (
	"context"
	"errors"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/skillsenselab/wirekit/di"
	"github.com/skillsenselab/wirekit/logger"
)

// consumerName renders the consumer type for labels. Direct lookups have
// no consumer and show as "direct".
func consumerName(t reflect.Type) string {
	if t == nil {
		return "direct"
	}
	return t.String()
}

// errorCode extracts the container error code for metric labels.
func errorCode(err error) string {
	var de *di.Error
	if errors.As(err, &de) {
		return string(de.Code)
	}
	return "UNKNOWN"
}

// WithLogging returns a resolution middleware that logs each lookup.
// Successful lookups log at debug, failures at error.
func WithLogging(log *logger.Logger) di.Middleware {
	return func(next di.ResolveFunc) di.ResolveFunc {
		return func(req di.Request) (any, error) {
			start := time.Now()
			value, err := next(req)
			duration := time.Since(start)

			fields := map[string]interface{}{
				logger.FieldDependency: req.Key.String(),
				logger.FieldConsumer:   consumerName(req.Consumer),
				logger.FieldDuration:   duration.Milliseconds(),
			}

			if err != nil {
				fields[logger.FieldError] = err.Error()
				log.Error("dependency resolution failed", fields)
			} else {
				log.Debug("dependency resolved", fields)
			}

			return value, err
		}
	}
}

// WithTracing returns a resolution middleware that opens a span around
// each lookup. The span name is "{serviceName}.resolve". Resolution
// carries no context, so each span is a root.
func WithTracing(serviceName string) di.Middleware {
	return func(next di.ResolveFunc) di.ResolveFunc {
		return func(req di.Request) (any, error) {
			ctx, span := StartSpan(context.Background(), serviceName+".resolve")
			defer span.End()

			span.SetAttributes(
				attribute.String(AttrServiceName, serviceName),
				attribute.String(AttrDependency, req.Key.String()),
				attribute.String(AttrConsumer, consumerName(req.Consumer)),
			)

			value, err := next(req)
			if err != nil {
				SetSpanError(ctx, err)
				span.SetAttributes(attribute.String(AttrStatus, "error"))
			} else {
				span.SetAttributes(attribute.String(AttrStatus, "ok"))
			}

			return value, err
		}
	}
}

// WithMetrics returns a resolution middleware that records lookup counts,
// durations and failures on the given instruments.
func WithMetrics(metrics *ResolutionMetrics) di.Middleware {
	return func(next di.ResolveFunc) di.ResolveFunc {
		return func(req di.Request) (any, error) {
			start := time.Now()
			value, err := next(req)
			duration := time.Since(start)

			ctx := context.Background()
			status := "ok"
			if err != nil {
				status = "error"
				metrics.RecordFailure(ctx, req.Key.String(), errorCode(err))
			}
			metrics.RecordResolution(ctx, req.Key.String(), status, duration)

			return value, err
		}
	}
}
