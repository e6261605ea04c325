// Package memtx gives in-memory adapters transactional semantics. A single
// UnitOfWork serialises transactions; adapters record compensating actions
// that run in reverse order when the transaction fails.
package memtx

import (
	"context"
	"sync"
)

type txKey struct{}

type journal struct {
	undo []func()
}

func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

// UnitOfWork is shared by every in-memory adapter taking part in a transaction.
type UnitOfWork struct {
	mu sync.Mutex
}

func New() *UnitOfWork {
	return &UnitOfWork{}
}

// WithinTx runs fn exclusively. Nested calls join the outer transaction.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	j := &journal{}
	txCtx := context.WithValue(ctx, txKey{}, j)
	committed := false
	defer func() {
		if !committed {
			j.rollback()
		}
	}()
	if err := fn(txCtx); err != nil {
		return err
	}
	committed = true
	return nil
}

// InTx reports whether ctx carries an open transaction.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*journal)
	return ok
}

// OnRollback registers undo against the transaction in ctx. Outside a
// transaction the change is final and undo is dropped.
func OnRollback(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(txKey{}).(*journal); ok {
		j.undo = append(j.undo, undo)
	}
}
