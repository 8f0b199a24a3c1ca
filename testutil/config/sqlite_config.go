package config

import (
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // sqlite driver
)

const sqliteInMemoryDSN = ":memory:"

// SQLiteSQLDB opens a fresh in-memory SQLite database, closed when the test ends.
//
// It is limited to one open connection: every connection to ":memory:" would see its own empty database.
func SQLiteSQLDB(t testing.TB) *sql.DB {
	db, err := sql.Open("sqlite", sqliteInMemoryDSN)
	require.NoError(t, err, "failed to open sqlite database")

	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Ping(), "failed to ping sqlite database")

	return db
}

// SQLiteSQLX opens a fresh in-memory SQLite database via sqlx, closed when the test ends.
func SQLiteSQLX(t testing.TB) *sqlx.DB {
	db, err := sqlx.Open("sqlite", sqliteInMemoryDSN)
	require.NoError(t, err, "failed to open sqlite database")

	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Ping(), "failed to ping sqlite database")

	return db
}
