// Package httpapi serves rule searches and the query codec over HTTP.
//
// Every search request is normalized through rulesquery.ParseQuery before it reaches the
// RuleSearcher, and its canonical encoding keys an LRU result cache, so URLs that differ only
// in parameter order, element order or duplicates are answered from the same entry.
// Cached results expire after the cache TTL (WithCacheTTL).
//
// Routes:
//
//	GET /api/rules/search            p, ps, facets plus any rulesquery parameter
//	GET /api/rules/query/normalize   canonical form of the request's query
//	GET /api/rules/query/equal       a, b: two encoded queries
//	GET /api/rules/facets/policy     facet: one or more facet keys
//	GET /healthz
//
// Errors are returned as {"errors":[{"msg":"..."}]}.
package httpapi
