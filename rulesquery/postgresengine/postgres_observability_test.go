package postgresengine_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery/postgresengine"
	"github.com/AntonStoeckl/coding-rules-query-go/testutil/helper"
)

func Test_Observability_Search_Success(t *testing.T) {
	// setup
	db := (&fakeDB{}).
		respond("COUNT(*)", []any{int64(1)}).
		respond("array_to_json",
			ruleRow(fakeID1, "java:S2259", "Null pointers", "java", "BUG", "MAJOR", `[]`, time.Now()),
		)
	logHandler := helper.NewLogHandlerSpy(false)
	contextualLogger := helper.NewContextualLoggerSpy()
	metrics := helper.NewMetricsCollectorSpy(true)
	tracing := helper.NewTracingCollectorSpy(true)

	store := givenRuleStoreWithFakeDB(
		t,
		db,
		postgresengine.WithLogger(slog.New(logHandler)),
		postgresengine.WithContextualLogger(contextualLogger),
		postgresengine.WithMetrics(metrics),
		postgresengine.WithTracing(tracing),
	)

	// act
	_, _, err := store.Search(context.Background(), rulesquery.Query{}, rulesquery.Paging{PageIndex: 2, PageSize: 10})

	// assert
	require.NoError(t, err)

	assert.True(t, metrics.HasDurationRecordForMetric("rulesquery_search_duration_seconds").
		WithOperation("search").
		WithStatus("success").
		Assert())
	assert.True(t, metrics.HasValueRecordForMetric("rulesquery_rules_found").
		WithOperation("search").
		WithValue(1).
		Assert())
	assert.Zero(t, metrics.CountCounterRecordsForMetric("rulesquery_operation_errors_total"))

	span, found := tracing.FindSpan("rulesquery.search")
	require.True(t, found)
	assert.True(t, span.Finished)
	assert.Equal(t, "success", span.Status)
	assert.Equal(t, "2", span.StartAttributes["page_index"])
	assert.Equal(t, "10", span.StartAttributes["page_size"])
	assert.Equal(t, "1", span.EndAttributes["total"])
	assert.Equal(t, "1", span.EndAttributes["result_count"])
	assert.Contains(t, span.EndAttributes, "duration_ms")

	assert.True(t, logHandler.HasLog(slog.LevelDebug, "executed sql for: count").WithAttr("query").Assert())
	assert.True(t, logHandler.HasLog(slog.LevelDebug, "executed sql for: search").WithAttr("duration_ms").Assert())
	assert.True(t, logHandler.HasLog(slog.LevelInfo, "rulesquery operation: search completed").
		WithAttrValue("rule_count", "1").
		WithAttrValue("total", "1").
		Assert())
	assert.True(t, contextualLogger.HasLog(slog.LevelInfo, "rulesquery operation: search completed").Assert())
}

func Test_Observability_Search_DatabaseError(t *testing.T) {
	// setup
	db := (&fakeDB{}).fail("COUNT(*)", errFakeDatabase)
	logHandler := helper.NewLogHandlerSpy(false)
	metrics := helper.NewMetricsCollectorSpy(true)
	tracing := helper.NewTracingCollectorSpy(true)

	store := givenRuleStoreWithFakeDB(
		t,
		db,
		postgresengine.WithLogger(slog.New(logHandler)),
		postgresengine.WithMetrics(metrics),
		postgresengine.WithTracing(tracing),
	)

	// act
	_, _, err := store.Search(context.Background(), rulesquery.Query{}, rulesquery.DefaultPaging())

	// assert
	require.Error(t, err)

	assert.True(t, metrics.HasCounterRecordForMetric("rulesquery_database_errors_total").
		WithOperation("count").
		WithStatus("error").
		Assert())
	assert.True(t, metrics.HasCounterRecordForMetric("rulesquery_operation_errors_total").
		WithOperation("search").
		WithErrorType("database_query_error").
		Assert())
	assert.True(t, metrics.HasDurationRecordForMetric("rulesquery_search_duration_seconds").
		WithStatus("error").
		Assert())
	assert.Empty(t, metrics.GetValueRecords())

	span, found := tracing.FindSpan("rulesquery.search")
	require.True(t, found)
	assert.Equal(t, "error", span.Status)
	assert.Equal(t, "database_query_error", span.EndAttributes["error_type"])

	assert.True(t, logHandler.HasLog(slog.LevelError, "database query execution failed").
		WithAttrValue("error", errFakeDatabase.Error()).
		Assert())
}

func Test_Observability_FacetCounts_RecordsSkippedFacets(t *testing.T) {
	// setup
	db := (&fakeDB{}).respond(`"facet_value"`, []any{"java", int64(2)})
	logHandler := helper.NewLogHandlerSpy(false)
	metrics := helper.NewMetricsCollectorSpy(true)
	tracing := helper.NewTracingCollectorSpy(true)

	store := givenRuleStoreWithFakeDB(
		t,
		db,
		postgresengine.WithLogger(slog.New(logHandler)),
		postgresengine.WithMetrics(metrics),
		postgresengine.WithTracing(tracing),
	)

	// act
	_, err := store.FacetCounts(context.Background(), rulesquery.Query{}, rulesquery.FacetLanguages, rulesquery.FacetSearchQuery)

	// assert
	require.NoError(t, err)

	assert.True(t, metrics.HasCounterRecordForMetric("rulesquery_facets_skipped_total").
		WithLabel("facet", "searchQuery").
		Assert())
	assert.Equal(t, 1, metrics.CountCounterRecordsForMetric("rulesquery_facets_skipped_total"))
	assert.True(t, metrics.HasDurationRecordForMetric("rulesquery_facet_duration_seconds").
		WithOperation("facets").
		WithStatus("success").
		Assert())
	assert.True(t, logHandler.HasLog(slog.LevelDebug, "facet is not requestable, skipped").
		WithAttrValue("facet", "searchQuery").
		Assert())

	span, found := tracing.FindSpan("rulesquery.facets")
	require.True(t, found)
	assert.Equal(t, "languages", span.StartAttributes["facets"])
	assert.Equal(t, "success", span.Status)
}

func Test_Observability_Activate_RuleNotFound(t *testing.T) {
	// setup
	db := &fakeDB{rowsAffected: 0}
	metrics := helper.NewMetricsCollectorSpy(true)
	tracing := helper.NewTracingCollectorSpy(true)

	store := givenRuleStoreWithFakeDB(t, db, postgresengine.WithMetrics(metrics), postgresengine.WithTracing(tracing))

	// act
	err := store.Activate(context.Background(), "P1", helper.RuleNullPointer, rulesquery.SeverityMajor, rulesquery.InheritanceNone)

	// assert
	require.ErrorIs(t, err, rulesquery.ErrRuleNotFound)

	assert.True(t, metrics.HasCounterRecordForMetric("rulesquery_operation_errors_total").
		WithOperation("activate").
		WithErrorType("rule_not_found").
		Assert())
	assert.Zero(t, metrics.CountCounterRecordsForMetric("rulesquery_database_errors_total"))

	span, found := tracing.FindSpan("rulesquery.activate")
	require.True(t, found)
	assert.Equal(t, "P1", span.StartAttributes["profile_key"])
	assert.Equal(t, "error", span.Status)
}

func Test_Observability_Add_RecordsRulesAdded(t *testing.T) {
	// setup
	db := &fakeDB{rowsAffected: 2}
	metrics := helper.NewMetricsCollectorSpy(true)

	store := givenRuleStoreWithFakeDB(t, db, postgresengine.WithMetrics(metrics))
	rules := helper.FixtureRules(t)

	// act
	err := store.Add(context.Background(), rules[0], rules[1])

	// assert
	require.NoError(t, err)
	assert.True(t, metrics.HasValueRecordForMetric("rulesquery_rules_added").
		WithOperation("add").
		WithValue(2).
		Assert())
}

func Test_Observability_WithoutCollectors_DoesNotPanic(t *testing.T) {
	// setup
	db := (&fakeDB{}).fail("COUNT(*)", errFakeDatabase)
	store := givenRuleStoreWithFakeDB(t, db)

	// act & assert
	assert.NotPanics(t, func() {
		_, _, _ = store.Search(context.Background(), rulesquery.Query{}, rulesquery.DefaultPaging())
		_, _ = store.FacetCounts(context.Background(), rulesquery.Query{}, "unknown")
	})
}

func Test_Observability_WithTracingDisabled_RecordsNoSpans(t *testing.T) {
	// setup
	db := &fakeDB{}
	tracing := helper.NewTracingCollectorSpy(false)

	store := givenRuleStoreWithFakeDB(t, db, postgresengine.WithTracing(tracing))

	// act
	_, _, err := store.Search(context.Background(), rulesquery.Query{}, rulesquery.DefaultPaging())

	// assert
	require.NoError(t, err)
	assert.Empty(t, tracing.GetSpanRecords())
}
