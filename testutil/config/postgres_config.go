package config

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/stretchr/testify/require"
)

const (
	defaultMaxConnections     = 10
	defaultMaxIdleConnections = 2
	defaultMaxConnLifetime    = time.Hour
	defaultMaxConnIdleTime    = time.Minute * 5
	defaultConnectTimeout     = time.Second * 5
)

func requirePostgresDSN(t testing.TB) string {
	dsn := PostgresDSN()
	if dsn == "" {
		t.Skipf("%s is not set, skipping PostgreSQL test", PostgresDSNEnv)
	}

	return dsn
}

// PostgresPGXPool creates a pgxpool.Pool for the test database, closed when the test ends.
func PostgresPGXPool(t testing.TB) *pgxpool.Pool {
	dbConfig, err := pgxpool.ParseConfig(requirePostgresDSN(t))
	require.NoError(t, err, "failed to parse pgxpool config")

	dbConfig.MaxConns = defaultMaxConnections
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	pool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	require.NoError(t, err, "failed to create pgxpool")
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(context.Background()), "failed to ping database")

	return pool
}

// PostgresSQLDB creates a configured *sql.DB for the test database, closed when the test ends.
func PostgresSQLDB(t testing.TB) *sql.DB {
	db, err := sql.Open("postgres", requirePostgresDSN(t))
	require.NoError(t, err, "failed to open database connection")

	configureSQLPool(db)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.PingContext(context.Background()), "failed to ping database")

	return db
}

// PostgresSQLX creates a configured *sqlx.DB for the test database, closed when the test ends.
func PostgresSQLX(t testing.TB) *sqlx.DB {
	db, err := sqlx.Open("postgres", requirePostgresDSN(t))
	require.NoError(t, err, "failed to open database connection")

	configureSQLPool(db.DB)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.PingContext(context.Background()), "failed to ping database")

	return db
}

func configureSQLPool(db *sql.DB) {
	db.SetMaxOpenConns(defaultMaxConnections)
	db.SetMaxIdleConns(defaultMaxIdleConnections)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}
