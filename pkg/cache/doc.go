// Package cache offers a generic key-value cache with two backends: an
// in-process LRU map and Redis.
//
// Both satisfy the same [Cache] interface, so code written against it
// can run on the in-memory cache during development and switch to
// Redis in production without changes.
//
// # Interface
//
// [Cache] is parameterized over the value type V and exposes:
//
//   - Get(ctx, key) (V, error)
//   - Set(ctx, key, value, ttl) error
//   - Delete(ctx, key) error
//   - Has(ctx, key) (bool, error)
//   - Clear(ctx) error
//   - Close() error
//
// The ttl argument to Set reads as follows: a positive duration
// expires the entry after that long, zero applies the backend's
// configured default (one hour out of the box), and a negative
// duration pins the entry forever.
//
// # In-Memory Backend
//
// [NewMemory] suits single-process services and tests. Lookups go
// through a hash map and eviction order is tracked in a doubly-linked
// list, both O(1); a janitor goroutine sweeps expired entries:
//
//	c := cache.NewMemory[string](
//	    cache.WithDefaultTTL(5 * time.Minute),
//	    cache.WithCleanupInterval(30 * time.Second),
//	    cache.WithMaxEntries(10000),
//	)
//	defer c.Close()
//
//	c.Set(ctx, "greeting", "hello", 0)   // default TTL
//	val, err := c.Get(ctx, "greeting")   // "hello"
//
// When cached values own resources, register an eviction callback to
// release them:
//
//	c := cache.NewMemory[*Connection](
//	    cache.WithMaxEntries(100),
//	)
//	c.SetEvictCallback(func(key string, conn *Connection) {
//	    conn.Close()
//	})
//
// The callback fires on LRU eviction, janitor cleanup, Delete, and
// Clear.
//
// # Redis Backend
//
// [NewRedis] shares cache state across processes. It takes a
// [github.com/redis/go-redis/v9.UniversalClient], typically opened via
// [github.com/lifeforge/forge/pkg/redis]:
//
//	client := redis.MustOpen(ctx, os.Getenv("REDIS_URL"))
//	c := cache.NewRedis[User](client, nil,
//	    cache.WithPrefix("users"),
//	    cache.WithRedisDefaultTTL(30 * time.Minute),
//	)
//
//	c.Set(ctx, "user:123", user, time.Hour)
//	val, err := c.Get(ctx, "user:123")
//
// The second argument is a [Marshaler]; nil selects JSON. Supply your
// own to store values as msgpack, protobuf, or anything else.
//
// # Stampede Protection
//
// [GetOrSet] collapses concurrent misses for the same key into a
// single load using singleflight:
//
//	val, err := cache.GetOrSet(ctx, c, "user:123", func(ctx context.Context) (User, time.Duration, error) {
//	    user, err := repo.FindUser(ctx, "123")
//	    return user, 5 * time.Minute, err
//	})
//
// # Errors
//
// Sentinel errors are matched with [errors.Is]:
//
//   - [ErrNotFound]: the key is absent or expired
//   - [ErrClosed]: the cache was closed
//   - [ErrMarshal]: serializing the value failed
//   - [ErrUnmarshal]: deserializing the stored bytes failed
//
//	val, err := c.Get(ctx, "key")
//	if errors.Is(err, cache.ErrNotFound) {
//	    // miss
//	}
package cache
