// Package adapters provide database adapter implementations for the PostgreSQL rule search engine.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, so the search engine works with any supported connection type.
//
// The pgx adapter can additionally route reads to a replica pool when the caller
// asked for eventual consistency, see rulesquery.WithEventualConsistency.
package adapters
