package storewrapper

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore/sqlengine"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/testutil/config"
)

// Adapter type constants
const (
	TypeSQLiteSQLDB = "sqlite.db"
	TypeSQLiteSQLX  = "sqlite.sqlx"
	TypePGXPool     = "pgx.pool"
	TypeSQLDB       = "sql.db"
	TypeSQLXDB      = "sqlx.db"
)

const adapterTypeEnv = "ADAPTER_TYPE"

// Wrapper creates StreamStores on one connection type.
type Wrapper struct {
	Name     string
	IsSQLite bool
	create   func(t testing.TB, options ...sqlengine.Option) (*sqlengine.StreamStore, error)
}

var allWrappers = []Wrapper{
	{
		Name:     TypeSQLiteSQLDB,
		IsSQLite: true,
		create: func(t testing.TB, options ...sqlengine.Option) (*sqlengine.StreamStore, error) {
			options = append([]sqlengine.Option{sqlengine.WithDialect(sqlengine.DialectSQLite)}, options...)
			return sqlengine.NewStreamStoreFromSQLDB(config.SQLiteSQLDB(t), options...)
		},
	},
	{
		Name:     TypeSQLiteSQLX,
		IsSQLite: true,
		create: func(t testing.TB, options ...sqlengine.Option) (*sqlengine.StreamStore, error) {
			return sqlengine.NewStreamStoreFromSQLX(config.SQLiteSQLX(t), options...)
		},
	},
	{
		Name: TypePGXPool,
		create: func(t testing.TB, options ...sqlengine.Option) (*sqlengine.StreamStore, error) {
			return sqlengine.NewStreamStoreFromPGXPool(config.PostgresPGXPool(t), options...)
		},
	},
	{
		Name: TypeSQLDB,
		create: func(t testing.TB, options ...sqlengine.Option) (*sqlengine.StreamStore, error) {
			return sqlengine.NewStreamStoreFromSQLDB(config.PostgresSQLDB(t), options...)
		},
	},
	{
		Name: TypeSQLXDB,
		create: func(t testing.TB, options ...sqlengine.Option) (*sqlengine.StreamStore, error) {
			return sqlengine.NewStreamStoreFromSQLX(config.PostgresSQLX(t), options...)
		},
	},
}

// Wrappers returns the wrappers selected by the ADAPTER_TYPE environment variable, all of them if it is empty.
func Wrappers() []Wrapper {
	adapterTypeFromEnv := strings.ToLower(os.Getenv(adapterTypeEnv))
	if adapterTypeFromEnv == "" {
		return allWrappers
	}

	for _, wrapper := range allWrappers {
		if wrapper.Name == adapterTypeFromEnv {
			return []Wrapper{wrapper}
		}
	}

	panic(fmt.Sprintf("unsupported adapter type from env: %s", adapterTypeFromEnv))
}

// SQLiteWrapper returns the sql.DB based SQLite wrapper, for tests that need no matrix.
func SQLiteWrapper() Wrapper {
	return allWrappers[0]
}

// CreateStreamStore creates a StreamStore and fails the test if that is not possible.
func (w Wrapper) CreateStreamStore(t testing.TB, options ...sqlengine.Option) *sqlengine.StreamStore {
	es, err := w.create(t, options...)
	require.NoError(t, err, "creating the stream store failed")

	return es
}

// TryCreateStreamStore creates a StreamStore and returns the error (for testing error cases).
func (w Wrapper) TryCreateStreamStore(t testing.TB, options ...sqlengine.Option) (*sqlengine.StreamStore, error) {
	return w.create(t, options...)
}
