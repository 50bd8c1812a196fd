package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx, so repositories run the
// same statements inside and outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type txKey struct{}

// QuerierFromCtx returns the transaction bound to ctx by RunInTx, or pool.
func QuerierFromCtx(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

const defaultTxAttempts = 3

// TxManager runs units of work in a transaction. Serialization failures and
// deadlocks are retried with a fresh transaction, so fn must only touch the
// database through the context it receives.
type TxManager struct {
	pool        *pgxpool.Pool
	opts        pgx.TxOptions
	maxAttempts int
}

// TxOption customizes a TxManager.
type TxOption func(*TxManager)

// WithIsolation sets the transaction isolation level. Default: repeatable read.
func WithIsolation(level pgx.TxIsoLevel) TxOption {
	return func(m *TxManager) { m.opts.IsoLevel = level }
}

// WithMaxAttempts bounds how often a conflicting transaction is retried.
func WithMaxAttempts(n int) TxOption {
	return func(m *TxManager) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// NewTxManager creates a TxManager over pool.
func NewTxManager(pool *pgxpool.Pool, opts ...TxOption) *TxManager {
	m := &TxManager{
		pool:        pool,
		opts:        pgx.TxOptions{IsoLevel: pgx.RepeatableRead},
		maxAttempts: defaultTxAttempts,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// RunInTx executes fn within a transaction and commits when fn succeeds.
// A call made inside another RunInTx joins the outer transaction.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	var err error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		err = m.attempt(ctx, fn)
		if err == nil || !isTxConflict(err) || ctx.Err() != nil {
			return err
		}
	}
	return fmt.Errorf("transaction gave up after %d attempts: %w", m.maxAttempts, err)
}

func (m *TxManager) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.pool.BeginTx(ctx, m.opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// isTxConflict reports serialization_failure and deadlock_detected.
func isTxConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
