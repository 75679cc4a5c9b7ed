package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery/oteladapters"
)

// recordingLogger is an OpenTelemetry log.Logger keeping every emitted record.
type recordingLogger struct {
	noop.Logger
	records []log.Record
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	l.records = append(l.records, record)
}

func Test_SlogBridgeLogger_WithHandler(t *testing.T) {
	// setup
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "executed sql for: search", "duration_ms", 1.5)
	logger.InfoContext(ctx, "rulesquery operation: search completed", "rule_count", 3)
	logger.WarnContext(ctx, "failed to close database rows")
	logger.ErrorContext(ctx, "database query execution failed", "error", "boom")

	// assert
	output := buf.String()
	assert.Contains(t, output, "level=DEBUG")
	assert.Contains(t, output, "rule_count=3")
	assert.Contains(t, output, "level=WARN")
	assert.Contains(t, output, "error=boom")
}

func Test_NewSlogBridgeLogger_UsesGlobalProvider(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("rulesquery")

	assert.NotPanics(t, func() { logger.InfoContext(context.Background(), "facets computed") })
}

func Test_OTelLogger_Emit(t *testing.T) {
	// setup
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.InfoContext(context.Background(), "rules added", "rule_count", 2, 42, "dropped", "dangling")
	logger.ErrorContext(context.Background(), "activating rule failed")

	// assert
	require.Len(t, recorder.records, 2)

	info := recorder.records[0]
	assert.Equal(t, log.SeverityInfo, info.Severity())
	assert.Equal(t, "rules added", info.Body().AsString())
	assert.Equal(t, 1, info.AttributesLen())

	info.WalkAttributes(func(kv log.KeyValue) bool {
		assert.Equal(t, "rule_count", kv.Key)
		assert.Equal(t, "2", kv.Value.AsString())
		return true
	})

	assert.Equal(t, log.SeverityError, recorder.records[1].Severity())
}
