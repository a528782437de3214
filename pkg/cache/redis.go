package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores entries in a shared Redis instance, serialized through
// the configured Marshaler.
type Redis[V any] struct {
	client redis.UniversalClient
	opts   *redisOptions
	codec  Marshaler[V]
}

// NewRedis builds a Redis-backed cache on top of an existing client,
// typically one from pkg/redis.Open. Passing a nil Marshaler selects
// JSON encoding.
//
//	client := redis.MustOpen(ctx, os.Getenv("REDIS_URL"))
//	c := cache.NewRedis[User](client, nil,
//	    cache.WithPrefix("users"),
//	    cache.WithRedisDefaultTTL(30 * time.Minute),
//	)
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...RedisOption) *Redis[V] {
	o := &redisOptions{defaultTTL: defaultRedisTTL}
	for _, opt := range opts {
		opt(o)
	}

	if m == nil {
		m = jsonCodec[V]{}
	}

	return &Redis[V]{
		client: client,
		opts:   o,
		codec:  m,
	}
}

// Get fetches and decodes the value under key. A missing key maps
// redis.Nil to ErrNotFound.
func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := r.client.Get(ctx, r.fullKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}

	v, err := r.codec.Unmarshal(data)
	if err != nil {
		return zero, err
	}

	return v, nil
}

// Set encodes and stores value under key. Zero ttl resolves to the
// configured default; a negative ttl is translated to Redis's
// no-expiration form, since Redis has no negative TTLs.
func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.codec.Marshal(value)
	if err != nil {
		return err
	}

	if ttl == 0 {
		ttl = r.opts.defaultTTL
	}

	return r.client.Set(ctx, r.fullKey(key), data, max(ttl, 0)).Err()
}

// Delete removes key from Redis.
func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.fullKey(key)).Err()
}

// Has reports whether key currently exists.
func (r *Redis[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.fullKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear drops this cache's entries. With a prefix configured only the
// matching keys are removed, via non-blocking SCAN batches; without one
// the whole database is flushed.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.opts.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}

	pattern := r.opts.prefix + ":*"
	var cursor uint64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}

		if cursor = next; cursor == 0 {
			return nil
		}
	}
}

// Close is a no-op. The underlying client is owned by the caller and
// shut down through pkg/redis.Shutdown.
func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) fullKey(key string) string {
	if r.opts.prefix == "" {
		return key
	}
	return r.opts.prefix + ":" + key
}

var _ Cache[any] = (*Redis[any])(nil)
