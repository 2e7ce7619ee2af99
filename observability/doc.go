// Package observability provides OpenTelemetry tracing and metrics for
// wirekit applications, plus resolution middlewares that watch container
// activity.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-app"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartOperation(ctx, "my-app", "list-notes")
//	defer observability.EndOperation(span, err)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-app"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewResolutionMetrics(observability.Meter("my-app"))
//
// Resolution middlewares plug into a container at construction:
//
//	c := di.New(di.WithMiddleware(
//	    observability.WithLogging(log),
//	    observability.WithTracing("my-app"),
//	    observability.WithMetrics(metrics),
//	))
//
// Health checks:
//
//	health := observability.NewAppHealth("my-app", "1.0.0")
//	health.AddComponent(checker.CheckHealth(ctx))
package observability
