package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a typed key-value store with per-entry TTLs.
//
// The ttl argument to Set follows one convention across backends:
// positive values expire the entry after that duration, zero falls back
// to the backend's configured default, and negative values pin the
// entry until it is deleted.
type Cache[V any] interface {
	// Get returns the value stored under key, or ErrNotFound when the
	// key is absent or already expired.
	Get(ctx context.Context, key string) (V, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Has reports whether key exists and is still live.
	Has(ctx context.Context, key string) (bool, error)

	// Clear drops every entry.
	Clear(ctx context.Context) error

	// Close releases backend resources such as janitor goroutines.
	Close() error
}

// Marshaler converts values to and from the byte form required by
// backends that cannot hold Go values directly, such as Redis.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// jsonCodec is the Marshaler used when a backend gets a nil one.
type jsonCodec[V any] struct{}

func (jsonCodec[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonCodec[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

var flight singleflight.Group

type computed[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet reads key from the cache and, on a miss, computes the value
// with fn and stores it. Concurrent misses on the same key share a
// single fn call through singleflight, so a cold key cannot stampede
// the upstream source.
//
// fn returns the value together with the TTL to cache it under. When fn
// fails nothing is stored and the error is returned as is.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := flight.Do(key, func() (any, error) {
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return computed[V]{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	r := v.(computed[V])

	// Cache write failures are deliberately swallowed: the computed
	// value is still correct and the next miss will retry the store.
	_ = c.Set(ctx, key, r.val, r.ttl)

	return r.val, nil
}
