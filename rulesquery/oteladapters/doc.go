// Package oteladapters implements the rulesquery observability interfaces with OpenTelemetry.
//
//	store, err := postgresengine.NewRuleStoreFromPGXPool(
//		pool,
//		postgresengine.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter("rulesquery"))),
//		postgresengine.WithTracing(oteladapters.NewTracingCollector(otel.Tracer("rulesquery"))),
//		postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("rulesquery")),
//	)
package oteladapters
