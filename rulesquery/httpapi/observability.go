package httpapi

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

const (
	logMsgRequestServed = "request served"
	logMsgSearchFailed  = "search failed"
	logMsgFacetsFailed  = "facet counting failed"
	logMsgListening     = "http api listening"
	logMsgStopped       = "http api stopped"
	logAttrError        = "error"
	logAttrQuery        = "query"
	logAttrRequestID    = "request_id"
	logAttrMethod       = "method"
	logAttrRoute        = "route"
	logAttrStatus       = "status"
	logAttrDurationMS   = "duration_ms"
	logAttrAddr         = "addr"

	metricRequests        = "rulesquery_http_requests_total"
	metricRequestDuration = "rulesquery_http_request_duration_seconds"
	metricCacheHits       = "rulesquery_search_cache_hits_total"
	metricCacheMisses     = "rulesquery_search_cache_misses_total"

	routeUnmatched = "unmatched"
)

type requestIDKey struct{}

// RequestID returns the request id assigned by the API, or "" outside of a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestMiddleware assigns a request id, then logs and counts the request.
// An incoming X-Request-Id is kept.
func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, requestID)
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r.WithContext(ctx))

		duration := time.Since(start)
		route := routeTemplate(r)
		labels := map[string]string{
			logAttrMethod: r.Method,
			logAttrRoute:  route,
			logAttrStatus: strconv.Itoa(recorder.status),
		}

		s.incrementCounter(ctx, metricRequests, labels)
		s.recordDuration(ctx, metricRequestDuration, duration, labels)

		s.logInfo(
			ctx,
			logMsgRequestServed,
			logAttrRequestID, requestID,
			logAttrMethod, r.Method,
			logAttrRoute, route,
			logAttrStatus, recorder.status,
			logAttrDurationMS, toMilliseconds(duration),
		)
	})
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return routeUnmatched
	}

	template, err := route.GetPathTemplate()
	if err != nil {
		return routeUnmatched
	}

	return template
}

func (s *Server) recordCacheLookup(ctx context.Context, hit bool) {
	if hit {
		s.incrementCounter(ctx, metricCacheHits, nil)
		return
	}

	s.incrementCounter(ctx, metricCacheMisses, nil)
}

func (s *Server) logInfo(ctx context.Context, message string, args ...any) {
	if s.logger != nil {
		s.logger.Info(message, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, message, args...)
	}
}

func (s *Server) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error(), logAttrRequestID, RequestID(ctx)}
	allArgs = append(allArgs, args...)

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

func (s *Server) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(rulesquery.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metric, labels)
}

func (s *Server) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(rulesquery.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metric, duration, labels)
}

func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
