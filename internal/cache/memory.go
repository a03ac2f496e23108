package cache

import (
	"context"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/onnwee/optimize-kit/backend/internal/logger"
)

// entry is one stored value. It is expired iff now - insertedAt > ttl, and
// always expired when ttl <= 0.
type entry struct {
	value      any
	insertedAt time.Time
	ttl        time.Duration
}

func (e *entry) expired(now time.Time) bool {
	return e.ttl <= 0 || now.Sub(e.insertedAt) > e.ttl
}

// Memory is a TTL map. Expired entries are never returned; they are removed
// when next read and by the janitor. Size reports the raw map cardinality,
// so it counts expired entries that have not been swept yet.
type Memory struct {
	mu    sync.Mutex
	items map[string]*entry
	now   func() time.Time

	hits    atomic.Uint64
	misses  atomic.Uint64
	added   atomic.Uint64
	evicted atomic.Uint64

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Option configures a Memory store.
type Option func(*Memory)

// WithClock replaces time.Now. Tests use it to move time without sleeping.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an empty store. Call StartJanitor to enable periodic sweeping.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		items: make(map[string]*entry),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Set stores value under key, overwriting any existing entry.
func (m *Memory) Set(key string, value any, ttl time.Duration) {
	m.mu.Lock()
	m.items[key] = &entry{value: value, insertedAt: m.now(), ttl: ttl}
	m.mu.Unlock()
	m.added.Add(1)
}

// Get returns the live value for key. An expired entry is deleted as part of the read.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.Lock()
	e, ok := m.items[key]
	if ok && e.expired(m.now()) {
		delete(m.items, key)
		m.evicted.Add(1)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		m.misses.Add(1)
		return nil, false
	}
	m.hits.Add(1)
	return e.value, true
}

// Has reports whether Get would return a value, with the same lazy eviction.
func (m *Memory) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key. Absent keys are ignored.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
}

// Clear removes every entry.
func (m *Memory) Clear() {
	m.mu.Lock()
	m.items = make(map[string]*entry)
	m.mu.Unlock()
}

// Size returns the number of entries held, including expired entries not yet swept.
func (m *Memory) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Cleanup removes all expired entries and returns how many were removed.
func (m *Memory) Cleanup() int {
	m.mu.Lock()
	now := m.now()
	removed := 0
	for key, e := range m.items {
		if e.expired(now) {
			delete(m.items, key)
			removed++
		}
	}
	m.mu.Unlock()

	m.evicted.Add(uint64(removed))
	return removed
}

// DeleteMatching removes every key matched by re, expired or not, and
// returns how many were removed.
func (m *Memory) DeleteMatching(re *regexp.Regexp) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.items {
		if re.MatchString(key) {
			delete(m.items, key)
			removed++
		}
	}
	return removed
}

// Stats returns usage counters. Items is the raw cardinality, like Size.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	var size int64
	for _, e := range m.items {
		if b, ok := e.value.([]byte); ok {
			size += int64(len(b))
		}
	}
	items := int64(len(m.items))
	m.mu.Unlock()

	return Stats{
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		KeysAdded: m.added.Load(),
		Evictions: m.evicted.Load(),
		Size:      size,
		Items:     items,
	}
}

// StartJanitor sweeps expired entries every interval until ctx is cancelled
// or Close is called. It returns immediately. Only the first call starts a
// janitor; later calls are ignored.
func (m *Memory) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	m.mu.Lock()
	if m.done != nil {
		m.mu.Unlock()
		return
	}
	done := make(chan struct{})
	m.done = done
	m.mu.Unlock()

	log := logger.WithComponent("cache")
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := m.Cleanup(); n > 0 {
					log.Debug("swept expired entries", "removed", n, "remaining", m.Size())
				}
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Close stops the janitor and waits for it to exit. Stored entries are kept.
func (m *Memory) Close() {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Bytes adapts the store to the Cache interface for serialized payloads.
// Non-[]byte values stored through other paths read as misses.
func (m *Memory) Bytes() *ByteView {
	return &ByteView{m: m}
}

// ByteView is a Cache backed by a Memory store.
type ByteView struct {
	m *Memory
}

var (
	_ Cache   = (*ByteView)(nil)
	_ Matcher = (*ByteView)(nil)
)

func (v *ByteView) Get(key string) ([]byte, bool) {
	val, ok := v.m.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := val.([]byte)
	return b, ok
}

func (v *ByteView) Set(key string, value []byte, ttl time.Duration) { v.m.Set(key, value, ttl) }
func (v *ByteView) Delete(key string)                                { v.m.Delete(key) }
func (v *ByteView) Clear()                                           { v.m.Clear() }
func (v *ByteView) Stats() Stats                                     { return v.m.Stats() }

func (v *ByteView) DeleteMatching(re *regexp.Regexp) int { return v.m.DeleteMatching(re) }

// Store returns the underlying Memory store.
func (v *ByteView) Store() *Memory { return v.m }
