package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTx runs fn inside a transaction, committing when fn returns nil.
// Any other exit path, including a panic inside fn, rolls back: the
// deferred Rollback is a no-op once Commit has succeeded.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // safe after commit, returns ErrTxClosed

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
