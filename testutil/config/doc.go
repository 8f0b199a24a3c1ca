// Package config provides database connections for StreamStore testing.
//
// SQLite connections are in-memory and always available. PostgreSQL connections are only
// opened when the STREAMSTORE_POSTGRES_DSN environment variable is set, otherwise the
// calling test is skipped.
package config
