package postgres

import (
	"context"
	"fmt"
)

// TxManager runs units of work atomically, passing the transaction through
// the context. Nested RunInTx calls are not supported: an inner call opens a
// second independent transaction.
type TxManager struct {
	db TxBeginner
}

// NewTxManager creates a TxManager over a pool.
func NewTxManager(db TxBeginner) *TxManager {
	return &TxManager{db: db}
}

// RunInTx executes fn within a database transaction at the server default
// isolation level (Read Committed).
//
// On success it commits. When fn returns an error the transaction is rolled
// back and the error returned unchanged. On panic it rolls back and
// re-panics. The pooled connection is released on every path, since both
// Commit and Rollback return it to the pool.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(r)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		// ctx may already be cancelled; the rollback still has to reach the server.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
