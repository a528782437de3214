package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Shutdown adapts pool closing to the shutdown-hook signature used by
// forge.ShutdownHook. pgxpool.Close waits for checked-out connections
// to be returned, so in-flight queries finish first.
func Shutdown(pool *pgxpool.Pool) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		pool.Close()
		return nil
	}
}
