package middleware

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/onnwee/optimize-kit/backend/internal/cache"
	"github.com/onnwee/optimize-kit/backend/internal/logger"
	"github.com/onnwee/optimize-kit/backend/internal/metrics"
)

// CacheOptions configures CacheResponse.
type CacheOptions struct {
	// TTL of stored responses; zero selects cache.DefaultTTL.
	TTL time.Duration
	// KeyGenerator derives the cache key; defaults to DefaultCacheKey.
	KeyGenerator func(*http.Request) string
	// ShouldCache decides whether a request uses the cache at all; defaults
	// to GET requests only.
	ShouldCache func(*http.Request) bool
}

// cachedResponse is the stored form of a response.
type cachedResponse struct {
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body"`
}

// DefaultCacheKey is method, path and the JSON of the parsed query, joined by ':'.
func DefaultCacheKey(r *http.Request) string {
	q, err := json.Marshal(r.URL.Query())
	if err != nil {
		q = []byte(r.URL.RawQuery)
	}
	return r.Method + ":" + r.URL.Path + ":" + string(q)
}

func isGet(r *http.Request) bool { return r.Method == http.MethodGet }

// CacheResponse serves successful responses from c until their TTL passes.
// A hit is answered with status 200 and the stored payload without running
// the next handler. On a miss the response is captured and stored when its
// status is 2xx and its payload is non-empty.
func CacheResponse(c cache.Cache, opts CacheOptions) Middleware {
	ttl := opts.TTL
	if ttl == 0 {
		ttl = cache.DefaultTTL
	}
	keyFn := opts.KeyGenerator
	if keyFn == nil {
		keyFn = DefaultCacheKey
	}
	shouldCache := opts.ShouldCache
	if shouldCache == nil {
		shouldCache = isGet
	}
	cacheControl := "public, max-age=" + strconv.Itoa(max(0, int(math.Ceil(ttl.Seconds()))))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !shouldCache(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := keyFn(r)
			endpoint := endpointLabel(r)

			if raw, ok := c.Get(key); ok {
				var entry cachedResponse
				if err := json.Unmarshal(raw, &entry); err == nil {
					metrics.APICacheHits.WithLabelValues(endpoint).Inc()
					if entry.ContentType != "" {
						w.Header().Set("Content-Type", entry.ContentType)
					}
					w.Header().Set("X-Cache", "HIT")
					w.Header().Set("Cache-Control", cacheControl)
					w.WriteHeader(http.StatusOK)
					_, _ = w.Write(entry.Body)
					return
				}
				logger.WarnContext(r.Context(), "Dropping undecodable cache entry", "key", key)
				c.Delete(key)
			}
			metrics.APICacheMisses.WithLabelValues(endpoint).Inc()

			bw := newBufferWriter(w)
			next.ServeHTTP(bw, r)

			status := bw.Status()
			if status >= 200 && status < 300 && len(bw.Body()) > 0 {
				entry := cachedResponse{
					ContentType: w.Header().Get("Content-Type"),
					Body:        append([]byte(nil), bw.Body()...),
				}
				if raw, err := json.Marshal(entry); err == nil {
					c.Set(key, raw, ttl)
					metrics.APICacheStores.WithLabelValues(endpoint).Inc()
					w.Header().Set("X-Cache", "MISS")
					w.Header().Set("Cache-Control", cacheControl)
				}
			}
			bw.flush()
		})
	}
}

// InvalidateCache removes cached responses. An empty pattern clears
// everything. Otherwise pattern is a regular expression and only matching keys
// are removed; caches that cannot enumerate their keys are cleared entirely.
// It returns the number of entries removed as far as the cache can tell.
func InvalidateCache(c cache.Cache, pattern string) (int, error) {
	if pattern == "" {
		n := int(c.Stats().Items)
		c.Clear()
		metrics.APICacheInvalidations.WithLabelValues("full").Inc()
		return n, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, fmt.Errorf("invalid invalidation pattern: %w", err)
	}

	if m, ok := c.(cache.Matcher); ok {
		n := m.DeleteMatching(re)
		metrics.APICacheInvalidations.WithLabelValues("pattern").Inc()
		return n, nil
	}

	n := int(c.Stats().Items)
	logger.Warn("Cache backend cannot match keys, clearing all entries", "pattern", pattern)
	c.Clear()
	metrics.APICacheInvalidations.WithLabelValues("fallback").Inc()
	return n, nil
}

// CacheStatsSnapshot is a point-in-time view of a response cache.
type CacheStatsSnapshot struct {
	Size      int64  `json:"size"`
	Bytes     int64  `json:"bytes"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Timestamp string `json:"timestamp"`
}

// CacheStats reports the entry count of c with the time it was taken.
func CacheStats(c cache.Cache) CacheStatsSnapshot {
	s := c.Stats()
	return CacheStatsSnapshot{
		Size:      s.Items,
		Bytes:     s.Size,
		Hits:      s.Hits,
		Misses:    s.Misses,
		Evictions: s.Evictions,
		Timestamp: isoTimestamp(time.Now()),
	}
}

// isoTimestamp formats t in UTC with millisecond precision.
func isoTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
