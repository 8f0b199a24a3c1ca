package sqlengine

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// pgUndefinedTable is the PostgreSQL SQLSTATE for "relation does not exist".
const pgUndefinedTable = "42P01"

// IsMissingTable reports whether err was caused by a statement against a stream table that does not exist.
//
// AppendTo and Load do not create tables, so callers can use this to tell "stream never created" apart
// from other failures. It understands the errors of pgx, lib/pq and modernc.org/sqlite.
func IsMissingTable(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUndefinedTable
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_ERROR && strings.Contains(sqliteErr.Error(), "no such table")
	}

	return false
}
