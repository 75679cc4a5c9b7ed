package helper

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

// SpanContextSpy implements rulesquery.SpanContext for tests.
type SpanContextSpy struct {
	status     string
	attributes map[string]string
	mu         sync.Mutex
}

// SetStatus implements rulesquery.SpanContext.
func (s *SpanContextSpy) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status
}

// AddAttribute implements rulesquery.SpanContext.
func (s *SpanContextSpy) AddAttribute(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attributes[key] = value
}

// GetStatus returns the last status set on the span.
func (s *SpanContextSpy) GetStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

// SpanRecord represents a recorded span.
type SpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Status          string
	EndAttributes   map[string]string
	Finished        bool
	SpanContext     *SpanContextSpy
}

// TracingCollectorSpy captures tracing calls for inspection in tests.
type TracingCollectorSpy struct {
	spanRecords []SpanRecord
	mu          sync.Mutex
	recordCalls bool
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
// Set recordCalls to true to capture all tracing calls.
func NewTracingCollectorSpy(recordCalls bool) *TracingCollectorSpy {
	return &TracingCollectorSpy{
		spanRecords: make([]SpanRecord, 0),
		recordCalls: recordCalls,
	}
}

// StartSpan implements rulesquery.TracingCollector.
func (c *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, rulesquery.SpanContext) {
	if !c.recordCalls {
		return ctx, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	spanCtx := &SpanContextSpy{attributes: make(map[string]string)}

	c.spanRecords = append(c.spanRecords, SpanRecord{
		Name:            name,
		StartAttributes: maps.Clone(attrs),
		SpanContext:     spanCtx,
	})

	return ctx, spanCtx
}

// FinishSpan implements rulesquery.TracingCollector.
func (c *TracingCollectorSpy) FinishSpan(spanCtx rulesquery.SpanContext, status string, attrs map[string]string) {
	if !c.recordCalls || spanCtx == nil {
		return
	}

	spySpanCtx, ok := spanCtx.(*SpanContextSpy)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.spanRecords {
		if c.spanRecords[i].SpanContext == spySpanCtx {
			c.spanRecords[i].Status = status
			c.spanRecords[i].EndAttributes = maps.Clone(attrs)
			c.spanRecords[i].Finished = true

			break
		}
	}
}

// GetSpanRecords returns a copy of all captured span records.
func (c *TracingCollectorSpy) GetSpanRecords() []SpanRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]SpanRecord, len(c.spanRecords))
	copy(records, c.spanRecords)

	return records
}

// FindSpan returns the first span with the given name.
func (c *TracingCollectorSpy) FindSpan(name string) (SpanRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, record := range c.spanRecords {
		if record.Name == name {
			return record, true
		}
	}

	return SpanRecord{}, false
}

// Reset clears all captured span records.
func (c *TracingCollectorSpy) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.spanRecords = c.spanRecords[:0]
}
