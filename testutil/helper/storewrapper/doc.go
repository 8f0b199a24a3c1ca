// Package storewrapper creates StreamStores on every supported connection type for testing.
//
// Tests loop over Wrappers() and run as one subtest per connection type. SQLite wrappers use a fresh
// in-memory database per StreamStore. PostgreSQL wrappers skip unless STREAMSTORE_POSTGRES_DSN is set.
//
// The ADAPTER_TYPE environment variable restricts the run to one connection type:
//
//	ADAPTER_TYPE=sqlite.sqlx go test ./...
package storewrapper
