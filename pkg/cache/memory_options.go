package cache

import "time"

const (
	defaultMemoryTTL     = time.Hour
	defaultSweepInterval = time.Minute
)

// MemoryOption tunes the in-memory backend.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxEntries      int
}

// WithDefaultTTL sets the expiry applied when Set receives a zero TTL
// (default 1h).
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.defaultTTL = d
	}
}

// WithCleanupInterval sets how often the background sweep removes
// expired entries (default 1m). A non-positive interval disables the
// sweep entirely; expired entries then disappear lazily on access.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.cleanupInterval = d
	}
}

// WithMaxEntries caps the entry count, evicting the least recently used
// entry when full. Zero, the default, means no cap.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) {
		o.maxEntries = n
	}
}
