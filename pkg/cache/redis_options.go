package cache

import "time"

// defaultRedisTTL is the expiry used when Set receives a zero TTL and
// no override is configured.
const defaultRedisTTL = time.Hour

// RedisOption tunes the Redis backend.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix     string
	defaultTTL time.Duration
}

// WithRedisDefaultTTL sets the expiry applied when Set receives a zero
// TTL (default 1h).
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		o.defaultTTL = d
	}
}

// WithPrefix namespaces every key as "{prefix}:{key}", letting several
// caches share one Redis database without colliding.
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}
