package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery/oteladapters"
)

func newTracingCollector() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("test")), exporter
}

func Test_TracingCollector_Success(t *testing.T) {
	// setup
	collector, exporter := newTracingCollector()

	// act
	ctx, spanCtx := collector.StartSpan(context.Background(), "rulesquery.search", map[string]string{"page_size": "100"})
	spanCtx.AddAttribute("total", "7")
	collector.FinishSpan(spanCtx, "success", map[string]string{"result_count": "7"})

	// assert
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "rulesquery.search", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.String("page_size", "100"))
	assert.Contains(t, spans[0].Attributes, attribute.String("total", "7"))
	assert.Contains(t, spans[0].Attributes, attribute.String("result_count", "7"))
}

func Test_TracingCollector_Error(t *testing.T) {
	// setup
	collector, exporter := newTracingCollector()

	// act
	_, spanCtx := collector.StartSpan(context.Background(), "rulesquery.facets", nil)
	collector.FinishSpan(spanCtx, "error", map[string]string{"error_type": "facet_count_error"})

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.String("error_type", "facet_count_error"))
}

func Test_TracingCollector_UnknownStatus_IsKeptAsAttribute(t *testing.T) {
	// setup
	collector, exporter := newTracingCollector()

	// act
	_, spanCtx := collector.StartSpan(context.Background(), "rulesquery.add", nil)
	collector.FinishSpan(spanCtx, "partial", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.String("status", "partial"))
}

func Test_TracingCollector_ChildSpan(t *testing.T) {
	// setup
	collector, exporter := newTracingCollector()

	// act
	parentCtx, parent := collector.StartSpan(context.Background(), "http.request", nil)
	_, child := collector.StartSpan(parentCtx, "rulesquery.search", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpans(t *testing.T) {
	collector, exporter := newTracingCollector()

	assert.NotPanics(t, func() { collector.FinishSpan(nil, "success", nil) })
	assert.Empty(t, exporter.GetSpans())
}
