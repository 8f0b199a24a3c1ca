package sqlengine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver for database/sql and sqlx
	_ "modernc.org/sqlite" // sqlite driver for database/sql

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
)

// Driver names a connection type NewStreamStoreFromConfig can open.
type Driver string

const (
	DriverPGX          Driver = "pgx"
	DriverPostgres     Driver = "postgres"
	DriverSQLXPostgres Driver = "sqlx-postgres"
	DriverSQLite       Driver = "sqlite"
)

const (
	sqlDriverPostgres     = "postgres"
	sqlDriverSQLite       = "sqlite"
	defaultConnectTimeout = 5 * time.Second
)

// ConnectionConfig describes the database a StreamStore opens itself.
type ConnectionConfig struct {
	Driver Driver `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn"`
}

// Validate checks that driver and DSN are present and the driver is known.
func (c ConnectionConfig) Validate() error {
	if c.Driver == "" || c.DSN == "" {
		return eventstore.ErrMissingConnectionConfig
	}

	switch c.Driver {
	case DriverPGX, DriverPostgres, DriverSQLXPostgres, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("%w: %q", eventstore.ErrUnsupportedDriver, string(c.Driver))
	}
}

// NewStreamStoreFromConfig opens a connection as described by the config and creates a StreamStore on top of it.
//
// The StreamStore owns the connection, Close releases it.
// SQLite connections are limited to one open connection, so in-memory databases and transactions behave.
func NewStreamStoreFromConfig(ctx context.Context, cfg ConnectionConfig, options ...Option) (*StreamStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	switch cfg.Driver {
	case DriverPGX:
		pool, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}

		if pingErr := pool.Ping(pingCtx); pingErr != nil {
			pool.Close()
			return nil, pingErr
		}

		return withOwnedConnection(NewStreamStoreFromPGXPool(pool, options...))(func() error {
			pool.Close()
			return nil
		})

	case DriverPostgres:
		db, err := openSQLDB(pingCtx, sqlDriverPostgres, cfg.DSN)
		if err != nil {
			return nil, err
		}

		return withOwnedConnection(NewStreamStoreFromSQLDB(db, options...))(db.Close)

	case DriverSQLXPostgres:
		db, err := sqlx.Open(sqlDriverPostgres, cfg.DSN)
		if err != nil {
			return nil, err
		}

		if pingErr := db.PingContext(pingCtx); pingErr != nil {
			_ = db.Close()
			return nil, pingErr
		}

		return withOwnedConnection(NewStreamStoreFromSQLX(db, options...))(db.Close)

	default: // DriverSQLite, Validate rejected everything else
		db, err := openSQLDB(pingCtx, sqlDriverSQLite, cfg.DSN)
		if err != nil {
			return nil, err
		}

		db.SetMaxOpenConns(1)
		sqliteOptions := append([]Option{WithDialect(DialectSQLite)}, options...)

		return withOwnedConnection(NewStreamStoreFromSQLDB(db, sqliteOptions...))(db.Close)
	}
}

func openSQLDB(ctx context.Context, driverName string, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}

// withOwnedConnection hands the connection's close function to the new StreamStore,
// or calls it right away when the StreamStore could not be created.
func withOwnedConnection(es *StreamStore, err error) func(closeDB func() error) (*StreamStore, error) {
	return func(closeDB func() error) (*StreamStore, error) {
		if err != nil {
			_ = closeDB()
			return nil, err
		}

		es.closeDB = closeDB

		return es, nil
	}
}
