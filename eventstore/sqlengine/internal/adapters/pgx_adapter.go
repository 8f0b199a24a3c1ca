package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGXAdapter implements DBAdapter for pgxpool.Pool.
type PGXAdapter struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

// NewPGXAdapter creates a new PGX adapter.
func NewPGXAdapter(pool *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool}
}

// Query executes a query inside the open transaction, otherwise on the pool.
func (p *PGXAdapter) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	var rows pgx.Rows
	var err error

	if p.tx != nil {
		rows, err = p.tx.Query(ctx, query, args...)
	} else {
		rows, err = p.pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, err
	}

	return &pgxRows{rows: rows}, nil
}

// Exec executes a statement inside the open transaction, otherwise on the pool.
func (p *PGXAdapter) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	var tag pgconn.CommandTag
	var err error

	if p.tx != nil {
		tag, err = p.tx.Exec(ctx, query, args...)
	} else {
		tag, err = p.pool.Exec(ctx, query, args...)
	}

	if err != nil {
		return nil, err
	}

	return &pgxResult{tag: tag}, nil
}

// Begin starts a transaction on one pool connection, which stays acquired until Commit or Rollback.
func (p *PGXAdapter) Begin(ctx context.Context) error {
	if p.tx != nil {
		return ErrTransactionOpen
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}

	p.tx = tx

	return nil
}

// Commit commits the open transaction.
func (p *PGXAdapter) Commit(ctx context.Context) error {
	if p.tx == nil {
		return ErrNoTransaction
	}

	tx := p.tx
	p.tx = nil

	return tx.Commit(ctx)
}

// Rollback rolls back the open transaction.
func (p *PGXAdapter) Rollback(ctx context.Context) error {
	if p.tx == nil {
		return ErrNoTransaction
	}

	tx := p.tx
	p.tx = nil

	return tx.Rollback(ctx)
}

// InTransaction reports whether a transaction is open.
func (p *PGXAdapter) InTransaction() bool {
	return p.tx != nil
}

// pgxRows wraps pgx.Rows to implement the DBRows interface.
type pgxRows struct {
	rows pgx.Rows
}

// Next advances to the next row.
func (p *pgxRows) Next() bool {
	return p.rows.Next()
}

// Columns returns the column names of the result.
func (p *pgxRows) Columns() ([]string, error) {
	fields := p.rows.FieldDescriptions()
	columns := make([]string, len(fields))

	for i, field := range fields {
		columns[i] = field.Name
	}

	return columns, nil
}

// Values returns the decoded values of the current row in column order.
func (p *pgxRows) Values() ([]any, error) {
	return p.rows.Values()
}

// Err returns the error that ended the iteration, if any.
func (p *pgxRows) Err() error {
	return p.rows.Err()
}

// Close closes the rows iterator.
func (p *pgxRows) Close() error {
	p.rows.Close()
	return nil
}

// pgxResult wraps pgconn.CommandTag to implement the DBResult interface.
type pgxResult struct {
	tag pgconn.CommandTag
}

// RowsAffected returns the number of rows affected by the command.
func (p *pgxResult) RowsAffected() (int64, error) {
	return p.tag.RowsAffected(), nil
}
