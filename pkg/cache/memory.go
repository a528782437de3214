package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memEntry[V any] struct {
	expiresAt time.Time // zero means never expires
	value     V
	key       string
}

func (e *memEntry[V]) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// Memory is a process-local cache with TTL expiry and, when
// WithMaxEntries is set, LRU eviction.
//
// Entries live in a map keyed by string for constant-time lookup, with
// a doubly linked list tracking recency: fresh accesses move to the
// front and capacity eviction takes from the back.
type Memory[V any] struct {
	items   map[string]*list.Element
	lru     *list.List
	opts    *memoryOptions
	onEvict func(key string, value V)
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

// NewMemory builds an in-memory cache.
//
//	c := cache.NewMemory[string](
//	    cache.WithDefaultTTL(5 * time.Minute),
//	    cache.WithCleanupInterval(30 * time.Second),
//	    cache.WithMaxEntries(10000),
//	)
//	defer c.Close()
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := &memoryOptions{
		defaultTTL:      defaultMemoryTTL,
		cleanupInterval: defaultSweepInterval,
	}
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory[V]{
		items: make(map[string]*list.Element),
		lru:   list.New(),
		opts:  o,
		done:  make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go m.sweepLoop()
	}

	return m
}

// SetEvictCallback registers fn to run whenever an entry leaves the
// cache, whether by LRU pressure, TTL sweep, Delete, or Clear.
func (m *Memory[V]) SetEvictCallback(fn func(key string, value V)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = fn
}

// Get returns the value under key, marking it as recently used.
// Missing or expired keys yield ErrNotFound.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}

	e := elem.Value.(*memEntry[V])

	if e.expired() {
		m.drop(elem)
		var zero V
		return zero, ErrNotFound
	}

	m.lru.MoveToFront(elem)

	return e.value, nil
}

// Set stores value under key. Zero ttl resolves to the configured
// default and a negative ttl pins the entry forever. When the cache is
// at capacity the least recently used entry makes room.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := m.items[key]; ok {
		e := elem.Value.(*memEntry[V])
		e.value = value
		e.expiresAt = expiresAt
		m.lru.MoveToFront(elem)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		if oldest := m.lru.Back(); oldest != nil {
			m.drop(oldest)
		}
	}

	e := &memEntry[V]{key: key, value: value, expiresAt: expiresAt}
	m.items[key] = m.lru.PushFront(e)

	return nil
}

// Delete removes key if present.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if elem, ok := m.items[key]; ok {
		m.drop(elem)
	}

	return nil
}

// Has reports whether key exists and is still live. Unlike Get it does
// not refresh the entry's LRU position.
func (m *Memory[V]) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return false, nil
	}

	if elem.Value.(*memEntry[V]).expired() {
		m.drop(elem)
		return false, nil
	}

	return true, nil
}

// Clear drops every entry, invoking the eviction callback for each.
func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if m.onEvict != nil {
		for _, elem := range m.items {
			e := elem.Value.(*memEntry[V])
			m.onEvict(e.key, e.value)
		}
	}

	m.items = make(map[string]*list.Element)
	m.lru.Init()

	return nil
}

// Close stops the sweep goroutine and rejects further writes. Calling
// Close twice is safe.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true
	close(m.done)

	return nil
}

func (m *Memory[V]) sweepLoop() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep walks the recency list from the back and drops expired entries.
func (m *Memory[V]) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for elem := m.lru.Back(); elem != nil; {
		e := elem.Value.(*memEntry[V])
		prev := elem.Prev()
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			m.drop(elem)
		}
		elem = prev
	}
}

// drop unlinks elem from both structures. Caller holds the mutex.
func (m *Memory[V]) drop(elem *list.Element) {
	m.lru.Remove(elem)
	e := elem.Value.(*memEntry[V])
	delete(m.items, e.key)

	if m.onEvict != nil {
		m.onEvict(e.key, e.value)
	}
}

var _ Cache[any] = (*Memory[any])(nil)
