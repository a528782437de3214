package redis

import (
	"context"
	"io"
)

// Shutdown adapts a Redis client to the shutdown-hook signature used by
// forge.ShutdownHook, so the connection pool is drained on app stop.
//
//	app.Run(addr, forge.ShutdownHook(redis.Shutdown(client)))
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Close()
	}
}
