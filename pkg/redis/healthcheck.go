package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Healthcheck builds a probe for forge.WithHealthChecks that pings the
// client. A nil client yields a probe that always reports unhealthy,
// which keeps optional Redis wiring simple.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	if client == nil {
		return func(context.Context) error { return ErrHealthcheckFailed }
	}
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
