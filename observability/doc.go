// Package observability wires OpenTelemetry tracing and metrics for
// stagekit pipelines.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("stagekit"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "pipeline.orders")
//	defer span.End()
//
// Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter("stagekit"))
//	metrics.RecordRunEnd(ctx, "orders", "completed", duration)
//
// Telemetry bundles both behind the component lifecycle so bootstrap can
// start and flush them.
package observability
