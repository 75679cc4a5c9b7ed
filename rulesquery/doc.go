// Package rulesquery provides the query codec of the coding rules search together with the
// core types shared by the search engine, the HTTP API and the client.
//
// The codec maps between the flat, string-keyed URL representation of a rules filter (RawQuery)
// and the normalized filter state (Query). All codec functions are pure and total:
// malformed input becomes unset, nothing panics, nothing returns an error.
//
// Main operations:
//   - ParseQuery / SerializeQuery: RawQuery <-> Query
//   - AreQueriesEqual: compares two RawQuery values after normalization
//   - ShouldRequestFacet: decides whether the server computes counts for a facet
//   - GetServerFacet / GetAppFacet: translate facet names between the app and the server
//
// Common usage pattern:
//
//	raw := rulesquery.RawQueryFromValues(r.URL.Query())
//	query := rulesquery.ParseQuery(raw)
//	query.Severities = append(query.Severities, rulesquery.SeverityBlocker)
//	next := rulesquery.SerializeQueryWithExtras(query, raw)
//
//	if !rulesquery.AreQueriesEqual(raw, next) {
//		// navigate to next.Encode()
//	}
//
// The package also defines Rule, the sentinel errors of the search engine and the dependency-free
// observability interfaces (Logger, ContextualLogger, MetricsCollector, TracingCollector).
package rulesquery
