// Package cache holds the in-process stores behind response caching and
// memoization: a TTL map with lazy and periodic expiry, and a size-bounded
// ristretto LRU for deployments that need a memory ceiling.
package cache

import (
	"regexp"
	"time"
)

// DefaultTTL is used by Memoize and the response cache when no TTL is configured.
const DefaultTTL = 60 * time.Second

// DefaultSweepInterval is how often the janitor removes expired entries.
const DefaultSweepInterval = 5 * time.Minute

// Cache stores serialized payloads with a TTL. A TTL <= 0 stores an entry that
// is already expired on the next read.
type Cache interface {
	// Get returns the payload and true if present and not expired.
	Get(key string) ([]byte, bool)

	// Set stores a payload, overwriting any existing entry for key.
	Set(key string, value []byte, ttl time.Duration)

	// Delete removes a payload. Absent keys are ignored.
	Delete(key string)

	// Clear removes all payloads.
	Clear()

	// Stats returns cache statistics.
	Stats() Stats
}

// Matcher is implemented by caches that can enumerate their keys and so
// support selective invalidation.
type Matcher interface {
	DeleteMatching(re *regexp.Regexp) int
}

// Stats represents cache statistics.
type Stats struct {
	Hits      uint64 // Total cache hits
	Misses    uint64 // Total cache misses
	KeysAdded uint64 // Total keys added
	Evictions uint64 // Expired entries removed, lazily or by the janitor
	Size      int64  // Approximate payload size in bytes
	Items     int64  // Entries currently held, expired-but-unswept included
}
