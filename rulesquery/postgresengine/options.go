package postgresengine

import (
	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

// Logger is the logger accepted by WithLogger, see rulesquery.Logger.
type Logger = rulesquery.Logger

// ContextualLogger is the logger accepted by WithContextualLogger, see rulesquery.ContextualLogger.
type ContextualLogger = rulesquery.ContextualLogger

// MetricsCollector is the collector accepted by WithMetrics, see rulesquery.MetricsCollector.
type MetricsCollector = rulesquery.MetricsCollector

// TracingCollector is the collector accepted by WithTracing, see rulesquery.TracingCollector.
type TracingCollector = rulesquery.TracingCollector

// SpanContext is a span started by a TracingCollector.
type SpanContext = rulesquery.SpanContext

// Option defines a functional option for configuring RuleStore.
type Option func(*RuleStore) error

// WithTableName sets the name of the rules table.
func WithTableName(tableName string) Option {
	return func(rs *RuleStore) error {
		if tableName == "" {
			return rulesquery.ErrEmptyRulesTableName
		}

		rs.rulesTableName = tableName

		return nil
	}
}

// WithActiveRulesTableName sets the name of the table holding rule activations per quality profile.
func WithActiveRulesTableName(tableName string) Option {
	return func(rs *RuleStore) error {
		if tableName == "" {
			return rulesquery.ErrEmptyActiveRulesTableName
		}

		rs.activeRulesTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the RuleStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing, skipped facets (development use)
// Info level: Rule counts, facet counts, durations (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(rs *RuleStore) error {
		rs.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the RuleStore.
// It receives search and facet durations, result counts, skipped facets and database errors.
func WithMetrics(collector MetricsCollector) Option {
	return func(rs *RuleStore) error {
		rs.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the RuleStore.
// One span is created per search, facet computation, add and activate operation.
func WithTracing(collector TracingCollector) Option {
	return func(rs *RuleStore) error {
		rs.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the RuleStore.
// It receives the same messages as the Logger, with the operation's context for trace correlation.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(rs *RuleStore) error {
		rs.contextualLogger = logger
		return nil
	}
}
