package sqlengine

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
)

const (
	txActionBegin    = "begin"
	txActionCommit   = "commit"
	txActionRollback = "rollback"
)

// txState is the transaction state of a StreamStore.
type txState int

const (
	txIdle txState = iota
	txActive
)

// InTransaction reports whether a transaction is active.
func (es *StreamStore) InTransaction() bool {
	return es.tx == txActive
}

// BeginTransaction starts a transaction. All following operations of the StreamStore run inside it
// until Commit or Rollback. Transactions do not nest.
func (es *StreamStore) BeginTransaction(ctx context.Context) error {
	if es.tx == txActive {
		return eventstore.ErrTransactionAlreadyActive
	}

	if err := es.db.Begin(ctx); err != nil {
		es.logError(ctx, logMsgTransaction+txActionBegin+" failed", err)
		es.recordTransaction(ctx, txActionBegin, err)
		return errors.Join(eventstore.ErrBeginTransactionFailed, err)
	}

	es.tx = txActive
	es.recordTransaction(ctx, txActionBegin, nil)
	es.logOperation(ctx, logMsgTransaction+txActionBegin)

	return nil
}

// Commit commits the active transaction.
// The StreamStore is idle afterward, also when the commit failed.
func (es *StreamStore) Commit(ctx context.Context) error {
	if es.tx != txActive {
		return eventstore.ErrNoActiveTransaction
	}

	es.tx = txIdle

	if err := es.db.Commit(ctx); err != nil {
		es.logError(ctx, logMsgTransaction+txActionCommit+" failed", err)
		es.recordTransaction(ctx, txActionCommit, err)
		return errors.Join(eventstore.ErrCommitTransactionFailed, err)
	}

	es.recordTransaction(ctx, txActionCommit, nil)
	es.logOperation(ctx, logMsgTransaction+txActionCommit)

	return nil
}

// Rollback discards all changes of the active transaction.
// The StreamStore is idle afterward, also when the rollback failed.
func (es *StreamStore) Rollback(ctx context.Context) error {
	if es.tx != txActive {
		return eventstore.ErrNoActiveTransaction
	}

	es.tx = txIdle

	if err := es.db.Rollback(ctx); err != nil {
		es.logError(ctx, logMsgTransaction+txActionRollback+" failed", err)
		es.recordTransaction(ctx, txActionRollback, err)
		return errors.Join(eventstore.ErrRollbackFailed, err)
	}

	es.recordTransaction(ctx, txActionRollback, nil)
	es.logOperation(ctx, logMsgTransaction+txActionRollback)

	return nil
}
