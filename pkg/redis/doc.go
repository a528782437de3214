// Package redis opens and manages go-redis clients with production defaults.
//
// It is a thin layer over [github.com/redis/go-redis/v9]: URL parsing for
// redis:// and rediss:// schemes, pool tuning, startup retries, a health
// probe, and a shutdown hook that plugs into a Forge application.
//
// # Options
//
// Every knob is a functional option passed to [Open] or [MustOpen]:
//
//   - WithPoolSize(n int): connection pool ceiling (default 10)
//   - WithMinIdleConns(n int): idle connections kept warm (default 5)
//   - WithMaxIdleTime(d time.Duration): idle connection lifetime (default 10m)
//   - WithMaxActiveTime(d time.Duration): total connection lifetime (default 30m)
//   - WithRetry(attempts int, interval time.Duration): startup retry policy with
//     exponential backoff (default 3 attempts, 5s base)
//   - WithReadTimeout(d time.Duration): per-command read deadline (default 3s)
//   - WithWriteTimeout(d time.Duration): per-command write deadline (default 3s)
//   - WithDialTimeout(d time.Duration): dial deadline (default 5s)
//
// # Connecting
//
//	import (
//		"context"
//		"log"
//		"os"
//
//		"github.com/lifeforge/forge/pkg/redis"
//	)
//
//	func main() {
//		ctx := context.Background()
//
//		client, err := redis.Open(ctx, os.Getenv("REDIS_URL"),
//			redis.WithPoolSize(20),
//			redis.WithMinIdleConns(5),
//		)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer client.Close()
//	}
//
// # Health Checks
//
// [Healthcheck] returns a func(context.Context) error that pings the server,
// ready to drop into a readiness endpoint:
//
//	import (
//		"net/http"
//
//		goredis "github.com/redis/go-redis/v9"
//		"github.com/lifeforge/forge/pkg/redis"
//	)
//
//	func healthHandler(client goredis.UniversalClient) http.HandlerFunc {
//		healthFn := redis.Healthcheck(client)
//		return func(w http.ResponseWriter, r *http.Request) {
//			if err := healthFn(r.Context()); err != nil {
//				w.WriteHeader(http.StatusServiceUnavailable)
//				return
//			}
//			w.WriteHeader(http.StatusOK)
//		}
//	}
//
// # Graceful Shutdown
//
// [Shutdown] adapts client closure to the application shutdown hook:
//
//	import (
//		"github.com/lifeforge/forge"
//		"github.com/lifeforge/forge/pkg/redis"
//	)
//
//	client := redis.MustOpen(ctx, redisURL)
//	app := forge.New(
//		forge.WithShutdownHook(redis.Shutdown(client)),
//	)
//
// # Errors
//
// Failure modes surface as sentinel errors, joined with the underlying cause
// via [errors.Join] so errors.Is matching works on both:
//
//   - [ErrEmptyConnectionURL] - no connection URL given
//   - [ErrFailedToParseURL] - URL malformed or scheme unsupported
//   - [ErrConnectionFailed] - every retry attempt exhausted
//   - [ErrHealthcheckFailed] - ping returned an error
package redis
