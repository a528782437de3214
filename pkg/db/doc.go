// Package db opens pgx connection pools with production defaults and runs
// schema migrations.
//
// It sits on [github.com/jackc/pgx/v5/pgxpool] for pooling and
// [github.com/pressly/goose/v3] for migrations, adding startup retries with
// exponential backoff, a ping-based health probe, a transaction helper, and
// environment-driven configuration.
//
// # Environment Variables
//
//	DATABASE_CONN_URL           - PostgreSQL connection URL (required)
//	DATABASE_MAX_OPEN_CONNS     - pool ceiling (default 10)
//	DATABASE_MIN_CONNS          - idle connections kept warm (default 5)
//	DATABASE_HEALTHCHECK_PERIOD - pool health check interval (default 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - idle connection lifetime (default 10m)
//	DATABASE_MAX_CONN_LIFETIME  - total connection lifetime (default 30m)
//	DATABASE_RETRY_ATTEMPTS     - startup retry attempts (default 3)
//	DATABASE_RETRY_INTERVAL     - base retry interval (default 5s)
//	DATABASE_MIGRATIONS_PATH    - migrations directory (default internal/db/migrations)
//	DATABASE_MIGRATIONS_TABLE   - goose version table (default schema_migrations)
//
// # Connecting
//
// [Open] accepts a URL plus functional options overriding the defaults:
//
//	import (
//		"context"
//		"log"
//		"os"
//
//		"github.com/lifeforge/forge/pkg/db"
//	)
//
//	func main() {
//		ctx := context.Background()
//
//		pool, err := db.Open(ctx, os.Getenv("DATABASE_CONN_URL"),
//			db.WithMaxConns(10),
//			db.WithMinConns(5),
//		)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer pool.Close()
//	}
//
// # Health Checks
//
// [Healthcheck] returns a func(context.Context) error that pings the pool,
// ready to drop into a readiness endpoint:
//
//	import (
//		"context"
//		"net/http"
//
//		"github.com/lifeforge/forge/pkg/db"
//	)
//
//	func healthHandler(pool *db.Pool) http.HandlerFunc {
//		healthFn := db.Healthcheck(pool)
//		return func(w http.ResponseWriter, r *http.Request) {
//			if err := healthFn(r.Context()); err != nil {
//				w.WriteHeader(http.StatusServiceUnavailable)
//				return
//			}
//			w.WriteHeader(http.StatusOK)
//		}
//	}
//
// # Transactions
//
// [WithTx] begins a transaction, runs the callback, and commits on nil or
// rolls back on error or panic:
//
//	import (
//		"context"
//
//		"github.com/lifeforge/forge/pkg/db"
//	)
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//		return tx.QueryRow(ctx, "SELECT 1").Scan(&result)
//	})
//	if err != nil {
//		// nothing was committed
//	}
//
// # Migrations
//
// [Migrate] applies embedded SQL files through goose:
//
//	import (
//		"context"
//		"embed"
//		"log/slog"
//
//		"github.com/lifeforge/forge/pkg/db"
//	)
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//
//	err := db.Migrate(ctx, pool, migrations, "schema_migrations", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Errors
//
// Failure modes surface as sentinel errors, joined with the underlying cause
// via [errors.Join] so errors.Is matching works on both:
//
//   - [ErrFailedToParseDBConfig] - connection string did not parse
//   - [ErrFailedToOpenDBConnection] - every retry attempt exhausted
//   - [ErrHealthcheckFailed] - ping returned an error
//   - [ErrSetDialect] - goose dialect setup failed
//   - [ErrApplyMigrations] - a migration failed to apply
package db
