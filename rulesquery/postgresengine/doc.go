// Package postgresengine provides a PostgreSQL backed rule search for rulesquery.Query filters.
//
// The engine translates a Query into SQL on a rules table and an active rules table,
// supporting multiple database adapters (pgx, sql.DB, sqlx).
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX), with an optional pgx read replica
//   - Paged searches ordered by rule name, with the total number of matches
//   - Facet counts that ignore the facet's own selection
//   - Quality profile activation filters (activation, active severities, inheritance)
//   - Configurable table names, dual-logger support, metrics and tracing
//
// Usage examples:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewRuleStoreFromPGXPool(db, postgresengine.WithLogger(slog.Default()))
//	_ = store.CreateSchema(ctx)
//
//	query := rulesquery.ParseQuery(rulesquery.ParseRawQuery("languages=java&tags=cwe"))
//	rules, total, _ := store.Search(ctx, query, rulesquery.DefaultPaging())
//	facets, _ := store.FacetCounts(ctx, query, rulesquery.FacetLanguages, rulesquery.FacetStandard)
package postgresengine
