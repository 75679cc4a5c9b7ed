package postgresengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

const (
	operationSearch   = "search"
	operationFacets   = "facets"
	operationAdd      = "add"
	operationActivate = "activate"

	spanNamePrefix = "rulesquery."

	metricSearchDuration   = "rulesquery_search_duration_seconds"
	metricFacetDuration    = "rulesquery_facet_duration_seconds"
	metricAddDuration      = "rulesquery_add_duration_seconds"
	metricActivateDuration = "rulesquery_activate_duration_seconds"
	metricRulesFound       = "rulesquery_rules_found"
	metricRulesAdded       = "rulesquery_rules_added"
	metricDatabaseErrors   = "rulesquery_database_errors_total"
	metricOperationErrors  = "rulesquery_operation_errors_total"
	metricFacetsSkipped    = "rulesquery_facets_skipped_total"

	statusSuccess = "success"
	statusError   = "error"

	spanAttrOperation  = "operation"
	spanAttrStatus     = "status"
	spanAttrErrorType  = "error_type"
	spanAttrDurationMS = "duration_ms"
	spanAttrResultSize = "result_count"
	spanAttrPageIndex  = "page_index"
	spanAttrPageSize   = "page_size"
	spanAttrTotal      = "total"
	spanAttrFacets     = "facets"
	spanAttrFacet      = "facet"
	spanAttrRuleCount  = "rule_count"
	spanAttrProfileKey = "profile_key"

	errorTypeBuildQuery    = "build_query_error"
	errorTypeDatabaseQuery = "database_query_error"
	errorTypeDatabaseExec  = "database_exec_error"
	errorTypeRowScan       = "row_scan_error"
	errorTypeFacetCount    = "facet_count_error"
	errorTypeRuleNotFound  = "rule_not_found"
)

// durationMetrics holds the duration metric per operation.
var durationMetrics = map[string]string{
	operationSearch:   metricSearchDuration,
	operationFacets:   metricFacetDuration,
	operationAdd:      metricAddDuration,
	operationActivate: metricActivateDuration,
}

// valueMetrics holds the result size metric for operations that have one.
var valueMetrics = map[string]string{
	operationSearch: metricRulesFound,
	operationAdd:    metricRulesAdded,
}

// logQueryWithDuration logs SQL queries with execution time at debug level.
func (rs *RuleStore) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {
	rs.logDebug(ctx, logMsgSQLExecuted+action, logAttrDurationMS, rs.toMilliseconds(duration), logAttrQuery, sqlQuery)
}

// logOperation logs operational information at info level.
func (rs *RuleStore) logOperation(ctx context.Context, action string, args ...any) {
	if rs.logger != nil {
		rs.logger.Info(logMsgOperation+action, args...)
	}

	if rs.contextualLogger != nil {
		rs.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logDebug logs at debug level.
func (rs *RuleStore) logDebug(ctx context.Context, message string, args ...any) {
	if rs.logger != nil {
		rs.logger.Debug(message, args...)
	}

	if rs.contextualLogger != nil {
		rs.contextualLogger.DebugContext(ctx, message, args...)
	}
}

// logWarn logs non-critical issues at warn level.
func (rs *RuleStore) logWarn(ctx context.Context, message string, args ...any) {
	if rs.logger != nil {
		rs.logger.Warn(message, args...)
	}

	if rs.contextualLogger != nil {
		rs.contextualLogger.WarnContext(ctx, message, args...)
	}
}

// logError logs error information at the error level.
func (rs *RuleStore) logError(
	ctx context.Context,
	message string,
	err error,
	args ...any,
) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if rs.logger != nil {
		rs.logger.Error(message, allArgs...)
	}

	if rs.contextualLogger != nil {
		rs.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (rs *RuleStore) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDatabaseError counts failed database calls.
func (rs *RuleStore) recordDatabaseError(ctx context.Context, action string) {
	rs.incrementCounter(ctx, metricDatabaseErrors, map[string]string{
		spanAttrOperation: action,
		spanAttrStatus:    statusError,
	})
}

// recordSkippedFacet counts requested facets that are not requestable.
func (rs *RuleStore) recordSkippedFacet(ctx context.Context, facet string) {
	rs.incrementCounter(ctx, metricFacetsSkipped, map[string]string{
		spanAttrFacet: facet,
	})
}

// incrementCounter uses the context-aware method if the collector supports it.
func (rs *RuleStore) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if rs.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := rs.metricsCollector.(rulesquery.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	rs.metricsCollector.IncrementCounter(metric, labels)
}

// recordDuration uses the context-aware method if the collector supports it.
func (rs *RuleStore) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if rs.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := rs.metricsCollector.(rulesquery.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	rs.metricsCollector.RecordDuration(metric, duration, labels)
}

// recordValue uses the context-aware method if the collector supports it.
func (rs *RuleStore) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if rs.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := rs.metricsCollector.(rulesquery.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	rs.metricsCollector.RecordValue(metric, value, labels)
}

// === Operation Observer Pattern ===
// An operationObserver owns the span and the metrics of one RuleStore operation.

type operationObserver struct {
	rs        *RuleStore
	ctx       context.Context
	operation string
	span      SpanContext
	start     time.Time
}

// startObservation starts the span for an operation if tracing is configured
// and returns the context to use for the rest of the operation.
func (rs *RuleStore) startObservation(
	ctx context.Context,
	operation string,
	attrs map[string]string,
) (*operationObserver, context.Context) {

	spanAttrs := map[string]string{spanAttrOperation: operation}
	for key, value := range attrs {
		spanAttrs[key] = value
	}

	var span SpanContext
	if rs.tracingCollector != nil {
		ctx, span = rs.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, spanAttrs)
	}

	return &operationObserver{
		rs:        rs,
		ctx:       ctx,
		operation: operation,
		span:      span,
		start:     time.Now(),
	}, ctx
}

// finishSuccess records the duration and result size and finishes the span.
func (o *operationObserver) finishSuccess(resultSize int, attrs map[string]string) {
	duration := time.Since(o.start)
	labels := map[string]string{spanAttrOperation: o.operation, spanAttrStatus: statusSuccess}

	o.rs.recordDuration(o.ctx, durationMetrics[o.operation], duration, labels)

	if metric, ok := valueMetrics[o.operation]; ok {
		o.rs.recordValue(o.ctx, metric, float64(resultSize), labels)
	}

	finishAttrs := map[string]string{
		spanAttrResultSize: fmt.Sprintf("%d", resultSize),
		spanAttrDurationMS: o.formatDuration(duration),
	}
	for key, value := range attrs {
		finishAttrs[key] = value
	}

	o.finishSpan(statusSuccess, finishAttrs)
}

// finishError records the duration and the error and finishes the span.
func (o *operationObserver) finishError(errorType string) {
	duration := time.Since(o.start)

	o.rs.recordDuration(o.ctx, durationMetrics[o.operation], duration, map[string]string{
		spanAttrOperation: o.operation,
		spanAttrStatus:    statusError,
	})

	o.rs.incrementCounter(o.ctx, metricOperationErrors, map[string]string{
		spanAttrOperation: o.operation,
		spanAttrStatus:    statusError,
		spanAttrErrorType: errorType,
	})

	o.finishSpan(statusError, map[string]string{
		spanAttrErrorType:  errorType,
		spanAttrDurationMS: o.formatDuration(duration),
	})
}

func (o *operationObserver) finishSpan(status string, attrs map[string]string) {
	if o.rs.tracingCollector == nil || o.span == nil {
		return
	}

	o.span.SetStatus(status)
	o.rs.tracingCollector.FinishSpan(o.span, status, attrs)
}

// formatDuration formats duration for span attributes.
func (o *operationObserver) formatDuration(duration time.Duration) string {
	return fmt.Sprintf("%.2f", o.rs.toMilliseconds(duration))
}
