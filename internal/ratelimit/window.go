// Package ratelimit implements a sliding-window log limiter: each client
// identifier keeps the timestamps of its admitted requests, and a request is
// admitted while fewer than Max of them fall inside the trailing window.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/onnwee/optimize-kit/backend/internal/logger"
)

const (
	// DefaultWindow is the trailing interval requests are counted over.
	DefaultWindow = 60 * time.Second
	// DefaultMax is the number of requests admitted per window.
	DefaultMax = 60
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is how long until the oldest counted request leaves the
	// window. Zero when Allowed.
	RetryAfter time.Duration
}

// Window is a per-identifier sliding-window log. It is safe for concurrent use.
type Window struct {
	window time.Duration
	max    int
	now    func() time.Time

	mu       sync.Mutex
	requests map[string][]time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Option configures a Window.
type Option func(*Window)

// WithClock replaces time.Now for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(w *Window) {
		if now != nil {
			w.now = now
		}
	}
}

// New creates a limiter admitting max requests per window. Non-positive
// arguments select the defaults.
func New(window time.Duration, max int, opts ...Option) *Window {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMax
	}
	w := &Window{
		window:   window,
		max:      max,
		now:      time.Now,
		requests: make(map[string][]time.Time),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Limit returns the configured maximum per window.
func (w *Window) Limit() int { return w.max }

// Period returns the configured window length.
func (w *Window) Period() time.Duration { return w.window }

// Allow prunes id's log to timestamps newer than now-window and admits the
// request if fewer than Max remain. Rejected requests are not recorded.
func (w *Window) Allow(id string) Decision {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	times := prune(w.requests[id], now.Add(-w.window))

	if len(times) >= w.max {
		w.requests[id] = times
		return Decision{
			Allowed:    false,
			Limit:      w.max,
			Remaining:  0,
			RetryAfter: times[0].Add(w.window).Sub(now),
		}
	}

	times = append(times, now)
	w.requests[id] = times
	return Decision{
		Allowed:   true,
		Limit:     w.max,
		Remaining: w.max - len(times),
	}
}

// Reset forgets every recorded request for id.
func (w *Window) Reset(id string) {
	w.mu.Lock()
	delete(w.requests, id)
	w.mu.Unlock()
}

// Tracked returns the number of identifiers currently held.
func (w *Window) Tracked() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.requests)
}

// Sweep prunes every identifier's log and deletes those left empty. It
// returns the number of identifiers removed. Admission decisions do not
// depend on it; it only bounds memory.
func (w *Window) Sweep() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := w.now().Add(-w.window)
	removed := 0
	for id, times := range w.requests {
		times = prune(times, cutoff)
		if len(times) == 0 {
			delete(w.requests, id)
			removed++
			continue
		}
		w.requests[id] = times
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is cancelled or Stop is
// called. Only the first call starts a sweeper.
func (w *Window) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = w.window
	}

	w.mu.Lock()
	if w.done != nil {
		w.mu.Unlock()
		return
	}
	done := make(chan struct{})
	w.done = done
	w.mu.Unlock()

	log := logger.WithComponent("ratelimit")
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := w.Sweep(); n > 0 {
					log.Debug("dropped idle clients", "removed", n, "tracked", w.Tracked())
				}
			case <-w.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the sweeper and waits for it to exit.
func (w *Window) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })

	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}

// prune drops the leading timestamps at or before cutoff. Timestamps are
// appended in order, so the survivors are a suffix.
func prune(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return times
	}
	if i == len(times) {
		return nil
	}
	// Copy so the dropped prefix can be collected.
	out := make([]time.Time, len(times)-i, cap(times)-i)
	copy(out, times[i:])
	return out
}
