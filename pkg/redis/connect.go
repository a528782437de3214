package redis

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Option tunes the connection pool built by Open.
type Option func(*settings)

type settings struct {
	poolSize      int
	minIdleConns  int
	maxIdleTime   time.Duration
	maxActiveTime time.Duration
	retryAttempts int
	retryInterval time.Duration
	readTimeout   time.Duration
	writeTimeout  time.Duration
	dialTimeout   time.Duration
}

func defaultSettings() *settings {
	return &settings{
		poolSize:      10,
		minIdleConns:  5,
		maxIdleTime:   10 * time.Minute,
		maxActiveTime: 30 * time.Minute,
		retryAttempts: 3,
		retryInterval: 5 * time.Second,
		readTimeout:   3 * time.Second,
		writeTimeout:  3 * time.Second,
		dialTimeout:   5 * time.Second,
	}
}

// WithPoolSize caps the number of pooled connections (default 10).
func WithPoolSize(n int) Option {
	return func(s *settings) { s.poolSize = n }
}

// WithMinIdleConns keeps at least n idle connections warm (default 5).
func WithMinIdleConns(n int) Option {
	return func(s *settings) { s.minIdleConns = n }
}

// WithMaxIdleTime closes connections idle longer than d (default 10m).
func WithMaxIdleTime(d time.Duration) Option {
	return func(s *settings) { s.maxIdleTime = d }
}

// WithMaxActiveTime caps total connection lifetime (default 30m).
func WithMaxActiveTime(d time.Duration) Option {
	return func(s *settings) { s.maxActiveTime = d }
}

// WithRetry sets the startup retry budget: attempts tries with a
// linearly growing interval between them (default 3 tries, 5s base).
func WithRetry(attempts int, interval time.Duration) Option {
	return func(s *settings) {
		s.retryAttempts = attempts
		s.retryInterval = interval
	}
}

// WithReadTimeout bounds read operations (default 3s).
func WithReadTimeout(d time.Duration) Option {
	return func(s *settings) { s.readTimeout = d }
}

// WithWriteTimeout bounds write operations (default 3s).
func WithWriteTimeout(d time.Duration) Option {
	return func(s *settings) { s.writeTimeout = d }
}

// WithDialTimeout bounds new connection establishment (default 5s).
func WithDialTimeout(d time.Duration) Option {
	return func(s *settings) { s.dialTimeout = d }
}

// Open connects to Redis from a redis:// or rediss:// URL and verifies
// the connection with a ping before returning. Transient startup
// failures are retried per WithRetry.
//
//	client, err := redis.Open(ctx, cfg.Redis.URL, redis.WithPoolSize(20))
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}

	parsed, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}
	parsed.PoolSize = s.poolSize
	parsed.MinIdleConns = s.minIdleConns
	parsed.ConnMaxIdleTime = s.maxIdleTime
	parsed.ConnMaxLifetime = s.maxActiveTime
	parsed.ReadTimeout = s.readTimeout
	parsed.WriteTimeout = s.writeTimeout
	parsed.DialTimeout = s.dialTimeout

	return dial(ctx, parsed, s.retryAttempts, s.retryInterval)
}

// MustOpen is Open for binaries where a missing Redis is fatal.
func MustOpen(ctx context.Context, url string, opts ...Option) redis.UniversalClient {
	client, err := Open(ctx, url, opts...)
	if err != nil {
		slog.Error("failed to open redis connection", "error", err)
		os.Exit(1)
	}
	return client
}

func dial(ctx context.Context, opts *redis.Options, attempts int, interval time.Duration) (redis.UniversalClient, error) {
	attempts = max(attempts, 1)
	for i := range attempts {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * interval):
		}
	}
	return nil, ErrConnectionFailed
}
