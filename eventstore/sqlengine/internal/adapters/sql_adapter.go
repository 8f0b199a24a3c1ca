package adapters

import (
	"context"
	"database/sql"
)

// sqlQuerier is implemented by both *sql.DB and *sql.Tx.
type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLAdapter implements DBAdapter for sql.DB
type SQLAdapter struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSQLAdapter creates a new SQL adapter
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

func (s *SQLAdapter) querier() sqlQuerier {
	if s.tx != nil {
		return s.tx
	}

	return s.db
}

func (s *SQLAdapter) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := s.querier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

func (s *SQLAdapter) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	result, err := s.querier().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

func (s *SQLAdapter) Begin(ctx context.Context) error {
	if s.tx != nil {
		return ErrTransactionOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	s.tx = tx

	return nil
}

func (s *SQLAdapter) Commit(_ context.Context) error {
	if s.tx == nil {
		return ErrNoTransaction
	}

	tx := s.tx
	s.tx = nil

	return tx.Commit()
}

func (s *SQLAdapter) Rollback(_ context.Context) error {
	if s.tx == nil {
		return ErrNoTransaction
	}

	tx := s.tx
	s.tx = nil

	return tx.Rollback()
}

func (s *SQLAdapter) InTransaction() bool {
	return s.tx != nil
}

// stdRows wraps standard library sql.Rows to implement DBRows interface
type stdRows struct {
	rows *sql.Rows
}

func (s *stdRows) Next() bool {
	return s.rows.Next()
}

func (s *stdRows) Columns() ([]string, error) {
	return s.rows.Columns()
}

// Values scans the current row into untyped destinations, leaving the conversion to the caller.
func (s *stdRows) Values() ([]any, error) {
	columns, err := s.rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	if err := s.rows.Scan(dest...); err != nil {
		return nil, err
	}

	return values, nil
}

func (s *stdRows) Err() error {
	return s.rows.Err()
}

func (s *stdRows) Close() error {
	return s.rows.Close()
}

// stdResult wraps standard library sql.Result to implement DBResult interface
type stdResult struct {
	result sql.Result
}

func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}
