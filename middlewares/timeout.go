package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/lifeforge/forge/internal"
)

// DefaultTimeout applies when Timeout is given a non-positive duration.
const DefaultTimeout = 30 * time.Second

// TimeoutConfig configures the timeout middleware.
type TimeoutConfig struct {
	Timeout time.Duration
}

// TimeoutOption configures TimeoutConfig.
type TimeoutOption func(*TimeoutConfig)

type timeoutContextKey struct{}

// Timeout fails a request with a *TimeoutError when the handler does
// not finish in time. The handler goroutine keeps running after the
// deadline; long operations should watch GetTimeoutContext(c).Done()
// to stop early.
func Timeout(timeout time.Duration, opts ...TimeoutOption) internal.Middleware {
	cfg := TimeoutConfig{Timeout: timeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), cfg.Timeout)
			defer cancel()

			c.Set(timeoutContextKey{}, ctx)

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
			}

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				c.LogWarn("request timeout", "timeout", cfg.Timeout.String())
				return &TimeoutError{Duration: cfg.Timeout}
			}
			return ctx.Err()
		}
	}
}

// GetTimeoutContext returns the deadline-bound context installed by
// Timeout, or the request context when the middleware is not active.
func GetTimeoutContext(c internal.Context) context.Context {
	if ctx, ok := c.Get(timeoutContextKey{}).(context.Context); ok {
		return ctx
	}
	return c.Context()
}
