package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	txcontext "pantry/pkg/platform/tx"
)

// Tx runs a function atomically with respect to other grocery mutations.
// Authorization checks and the mutations they guard always run inside the
// same RunInTx call.
type Tx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// InMemoryTx serializes transactions with a single mutex. Paired with the
// in-memory stores, it gives the same check-then-act atomicity the SQL
// transaction provides in production.
type InMemoryTx struct {
	mu sync.Mutex
}

func NewInMemoryTx() *InMemoryTx {
	return &InMemoryTx{}
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

// SQLTx opens a database transaction and threads it through context so the
// Postgres stores execute inside it.
type SQLTx struct {
	db *sql.DB
}

func NewSQLTx(db *sql.DB) *SQLTx {
	return &SQLTx{db: db}
}

func (t *SQLTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
