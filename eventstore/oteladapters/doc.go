// Package oteladapters connects the observability hooks of a StreamStore to OpenTelemetry.
//
// Three adapters are provided:
//   - MetricsCollector maps durations to histograms, counters to counters and values to float counters
//   - TracingCollector opens one span per stream operation
//   - SlogBridgeLogger and OTelLogger implement eventstore.ContextualLogger with trace correlation
//
// Usage:
//
//	es, err := sqlengine.NewStreamStoreFromPGXPool(
//		pool,
//		sqlengine.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter("streamstore"))),
//		sqlengine.WithTracing(oteladapters.NewTracingCollector(otel.Tracer("streamstore"))),
//		sqlengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("streamstore")),
//	)
package oteladapters
