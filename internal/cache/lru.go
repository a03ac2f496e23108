package cache

import (
	"regexp"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// LRUCache is a size-bounded Cache backed by ristretto. ristretto only keeps
// key hashes, so the entries it holds are mirrored in live through its
// OnExit callback; that mirror backs Stats and DeleteMatching.
type LRUCache struct {
	cache *ristretto.Cache
	now   func() time.Time

	mu   sync.Mutex
	live map[string]*lruItem
}

var (
	_ Cache   = (*LRUCache)(nil)
	_ Matcher = (*LRUCache)(nil)
)

// lruItem wraps the payload with its expiry so reads honor TTLs exactly.
// ristretto's own TTL reaping runs on a coarse timer.
type lruItem struct {
	key       string
	data      []byte
	expiresAt time.Time
}

// NewLRU creates a new LRU cache.
// maxSizeMB is the maximum total payload size in megabytes.
// maxEntries is the expected number of entries, used to size the admission counters.
func NewLRU(maxSizeMB int64, maxEntries int64) (*LRUCache, error) {
	// NumCounters should be ~10x the number of entries
	numCounters := maxEntries * 10
	if numCounters < 1000 {
		numCounters = 1000
	}
	maxCost := maxSizeMB * 1024 * 1024
	if maxCost <= 0 {
		maxCost = 1024
	}

	lru := &LRUCache{now: time.Now, live: make(map[string]*lruItem)}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
		Metrics:     true,
		OnExit:      lru.forget,
	})
	if err != nil {
		return nil, err
	}
	lru.cache = c
	return lru, nil
}

// forget drops a value ristretto has deleted, evicted, rejected or replaced.
// A newer item stored under the same key is kept.
func (c *LRUCache) forget(val interface{}) {
	item, ok := val.(*lruItem)
	if !ok {
		return
	}
	c.mu.Lock()
	if c.live[item.key] == item {
		delete(c.live, item.key)
	}
	c.mu.Unlock()
}

// Get retrieves a payload by key.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}

	item, ok := val.(*lruItem)
	if !ok {
		c.cache.Del(key)
		return nil, false
	}

	if c.now().After(item.expiresAt) {
		c.cache.Del(key)
		return nil, false
	}

	return item.data, true
}

// Set stores a payload. A ttl <= 0 removes any existing entry instead, which
// reads the same as storing an already-expired one.
func (c *LRUCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		c.cache.Del(key)
		return
	}

	item := &lruItem{
		key:       key,
		data:      value,
		expiresAt: c.now().Add(ttl),
	}

	// Recorded before the write; ristretto may reject it from another goroutine.
	c.mu.Lock()
	c.live[key] = item
	c.mu.Unlock()

	// Cost is the payload size; ristretto may still reject the item under pressure.
	if !c.cache.SetWithTTL(key, item, int64(len(value)), ttl) {
		c.forget(item)
	}

	// Make the write visible to the next Get.
	c.cache.Wait()
}

// Delete removes a payload.
func (c *LRUCache) Delete(key string) {
	c.cache.Del(key)
}

// Clear removes all payloads.
func (c *LRUCache) Clear() {
	c.cache.Clear()
}

// DeleteMatching removes every key matched by re, expired or not, and
// returns how many were removed.
func (c *LRUCache) DeleteMatching(re *regexp.Regexp) int {
	c.mu.Lock()
	var keys []string
	for key := range c.live {
		if re.MatchString(key) {
			keys = append(keys, key)
		}
	}
	c.mu.Unlock()

	for _, key := range keys {
		c.cache.Del(key)
	}
	return len(keys)
}

// Stats returns cache statistics. Hits, misses and evictions come from
// ristretto's counters; Items and Size count the entries it still holds.
func (c *LRUCache) Stats() Stats {
	m := c.cache.Metrics

	c.mu.Lock()
	var size int64
	for _, item := range c.live {
		size += int64(len(item.data))
	}
	items := int64(len(c.live))
	c.mu.Unlock()

	return Stats{
		Hits:      m.Hits(),
		Misses:    m.Misses(),
		KeysAdded: m.KeysAdded(),
		Evictions: m.KeysEvicted(),
		Size:      size,
		Items:     items,
	}
}

// Close releases ristretto's goroutines.
func (c *LRUCache) Close() {
	c.cache.Close()
}
