package adapters

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for sqlx.DB
type SQLXAdapter struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

// NewSQLXAdapter creates a new SQLX adapter
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

func (s *SQLXAdapter) ext() sqlx.ExtContext {
	if s.tx != nil {
		return s.tx
	}

	return s.db
}

// Query executes a query and returns wrapped sqlx rows.
func (s *SQLXAdapter) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := s.ext().QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &sqlxRows{rows: rows}, nil
}

// Exec executes a statement and returns the wrapped result.
func (s *SQLXAdapter) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	result, err := s.ext().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// Begin starts a transaction with Beginx.
func (s *SQLXAdapter) Begin(ctx context.Context) error {
	if s.tx != nil {
		return ErrTransactionOpen
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	s.tx = tx

	return nil
}

// Commit commits the open transaction.
func (s *SQLXAdapter) Commit(_ context.Context) error {
	if s.tx == nil {
		return ErrNoTransaction
	}

	tx := s.tx
	s.tx = nil

	return tx.Commit()
}

// Rollback rolls back the open transaction.
func (s *SQLXAdapter) Rollback(_ context.Context) error {
	if s.tx == nil {
		return ErrNoTransaction
	}

	tx := s.tx
	s.tx = nil

	return tx.Rollback()
}

// InTransaction reports whether a transaction is open.
func (s *SQLXAdapter) InTransaction() bool {
	return s.tx != nil
}

// sqlxRows wraps sqlx.Rows to implement DBRows interface.
type sqlxRows struct {
	rows *sqlx.Rows
}

func (s *sqlxRows) Next() bool {
	return s.rows.Next()
}

func (s *sqlxRows) Columns() ([]string, error) {
	return s.rows.Columns()
}

func (s *sqlxRows) Values() ([]any, error) {
	return s.rows.SliceScan()
}

func (s *sqlxRows) Err() error {
	return s.rows.Err()
}

func (s *sqlxRows) Close() error {
	return s.rows.Close()
}
