package cache

import "time"

// MemoryOption configures the in-memory store.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxEntries      int
}

func defaultMemoryOptions() *memoryOptions {
	return &memoryOptions{
		defaultTTL:      DefaultTTL,
		cleanupInterval: time.Minute,
		maxEntries:      0, // 0 = unlimited
	}
}

// DefaultTTL is applied when Set is called with a zero TTL and no
// default was configured.
const DefaultTTL = 5 * time.Minute

// WithDefaultTTL sets the default expiration for cache entries when
// Set is called with a zero TTL.
// Default: 5 minutes.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		if d > 0 {
			o.defaultTTL = d
		}
	}
}

// WithCleanupInterval sets how often expired entries are removed
// by the background janitor goroutine. Zero disables the janitor.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.cleanupInterval = d
	}
}

// WithMaxEntries sets the maximum number of entries in the store.
// When the limit is reached, the least recently used entry is evicted.
// Zero means unlimited.
// Default: 0 (unlimited).
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) {
		o.maxEntries = n
	}
}
