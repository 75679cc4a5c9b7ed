package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

const (
	DefaultCacheSize = 256
	DefaultCacheTTL  = 30 * time.Second

	RouteSearch      = "/api/rules/search"
	RouteNormalize   = "/api/rules/query/normalize"
	RouteEqual       = "/api/rules/query/equal"
	RouteFacetPolicy = "/api/rules/facets/policy"
	RouteHealth      = "/healthz"

	HeaderRequestID = "X-Request-Id"
	HeaderCache     = "X-Cache"

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var ErrNilRuleSearcher = errors.New("rule searcher must not be nil")
var ErrInvalidCacheSize = errors.New("cache size must be positive")
var ErrInvalidCacheTTL = errors.New("cache ttl must be positive")

// RuleSearcher is the search backend of the API. *postgresengine.RuleStore satisfies it.
type RuleSearcher interface {
	Search(ctx context.Context, query rulesquery.Query, paging rulesquery.Paging) (rulesquery.Rules, int, error)
	FacetCounts(ctx context.Context, query rulesquery.Query, facets ...string) (rulesquery.Facets, error)
}

// Server is the HTTP API. It implements http.Handler.
type Server struct {
	searcher         RuleSearcher
	cache            *lru.Cache[string, cachedResult]
	cacheSize        int
	cacheTTL         time.Duration
	now              func() time.Time
	router           *mux.Router
	logger           rulesquery.Logger
	contextualLogger rulesquery.ContextualLogger
	metricsCollector rulesquery.MetricsCollector
}

// Option defines a functional option for configuring Server.
type Option func(*Server) error

// WithCacheSize sets the number of search results kept in the LRU cache.
func WithCacheSize(size int) Option {
	return func(s *Server) error {
		if size < 1 {
			return ErrInvalidCacheSize
		}

		s.cacheSize = size

		return nil
	}
}

// WithLogger sets the logger for request logs.
func WithLogger(logger rulesquery.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, used in addition to the one set with WithLogger.
func WithContextualLogger(logger rulesquery.ContextualLogger) Option {
	return func(s *Server) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithCacheTTL sets how long a search result is served from the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Server) error {
		if ttl <= 0 {
			return ErrInvalidCacheTTL
		}

		s.cacheTTL = ttl

		return nil
	}
}

// WithMetrics sets the metrics collector for request counts, durations and cache hits.
func WithMetrics(collector rulesquery.MetricsCollector) Option {
	return func(s *Server) error {
		s.metricsCollector = collector
		return nil
	}
}

// NewServer creates the HTTP API on top of searcher.
func NewServer(searcher RuleSearcher, options ...Option) (*Server, error) {
	if searcher == nil {
		return nil, ErrNilRuleSearcher
	}

	s := &Server{
		searcher:  searcher,
		cacheSize: DefaultCacheSize,
		cacheTTL:  DefaultCacheTTL,
		now:       time.Now,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	cache, err := lru.New[string, cachedResult](s.cacheSize)
	if err != nil {
		return nil, errors.Join(ErrInvalidCacheSize, err)
	}

	s.cache = cache
	s.router = s.routes()

	return s, nil
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.requestMiddleware)

	router.HandleFunc(RouteSearch, s.handleSearch).Methods(http.MethodGet)
	router.HandleFunc(RouteNormalize, s.handleNormalize).Methods(http.MethodGet)
	router.HandleFunc(RouteEqual, s.handleEqual).Methods(http.MethodGet)
	router.HandleFunc(RouteFacetPolicy, s.handleFacetPolicy).Methods(http.MethodGet)
	router.HandleFunc(RouteHealth, s.handleHealth).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errRouteNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
	})

	return router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// PurgeCache drops all cached search results before their TTL ends, e.g. after rules were added or activated.
func (s *Server) PurgeCache() {
	s.cache.Purge()
}

// cachedResult is a search result with the time it stops being served.
type cachedResult struct {
	result    rulesquery.SearchResult
	expiresAt time.Time
}

func (s *Server) lookupCache(key string) (rulesquery.SearchResult, bool) {
	entry, ok := s.cache.Get(key)
	if !ok {
		return rulesquery.SearchResult{}, false
	}

	if !s.now().Before(entry.expiresAt) {
		s.cache.Remove(key)
		return rulesquery.SearchResult{}, false
	}

	return entry.result, true
}

func (s *Server) storeInCache(key string, result rulesquery.SearchResult) {
	s.cache.Add(key, cachedResult{result: result, expiresAt: s.now().Add(s.cacheTTL)})
}

// ListenAndServe serves the API on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	s.logInfo(ctx, logMsgListening, logAttrAddr, addr)

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	s.logInfo(ctx, logMsgStopped, logAttrAddr, addr)

	return nil
}
