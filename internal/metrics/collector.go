package metrics

import (
	"context"
	"time"

	"github.com/onnwee/optimize-kit/backend/internal/cache"
)

// CacheSource is anything that reports cache statistics.
type CacheSource interface {
	Stats() cache.Stats
}

// ClientTracker reports how many client identifiers a limiter holds.
type ClientTracker interface {
	Tracked() int
}

// Collector periodically copies store statistics into Prometheus gauges.
type Collector struct {
	cache    CacheSource
	limiter  ClientTracker
	interval time.Duration
	stop     chan struct{}
}

// NewCollector creates a new metrics collector. Either source may be nil.
func NewCollector(c CacheSource, l ClientTracker, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Collector{
		cache:    c,
		limiter:  l,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start begins the collection loop. It blocks until ctx is done or Stop is called.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Collect()

	for {
		select {
		case <-ticker.C:
			c.Collect()
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the metrics collector
func (c *Collector) Stop() {
	close(c.stop)
}

// Collect samples every source once.
func (c *Collector) Collect() {
	if c.cache != nil {
		stats := c.cache.Stats()
		APICacheSize.Set(float64(stats.Size))
		APICacheItems.Set(float64(stats.Items))
		APICacheEvictions.Set(float64(stats.Evictions))
	}
	if c.limiter != nil {
		RateLimitTrackedClients.Set(float64(c.limiter.Tracked()))
	}
}
