// Package adapters provides database adapter implementations for the sql stream store.
//
// This package implements the adapter pattern to support multiple database libraries:
// pgxpool.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface: parameterized statements, rows with their column names,
// and one transaction at a time that all subsequent statements are routed through.
package adapters
