package adapters

import (
	"context"
	"errors"
)

// ErrNoTransaction is returned by Commit and Rollback when no transaction was begun.
var ErrNoTransaction = errors.New("adapter has no open transaction")

// ErrTransactionOpen is returned by Begin when a transaction is already open.
var ErrTransactionOpen = errors.New("adapter already has an open transaction")

// DBAdapter defines the interface for database operations needed by the stream store.
//
// While a transaction is open, Query and Exec run inside it.
type DBAdapter interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	InTransaction() bool
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Columns() ([]string, error)
	Values() ([]any, error)
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}
