package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/onnwee/optimize-kit/backend/internal/apierr"
	"github.com/onnwee/optimize-kit/backend/internal/metrics"
	"github.com/onnwee/optimize-kit/backend/internal/ratelimit"
	"golang.org/x/time/rate"
)

// RateLimitOptions configures RateLimit.
type RateLimitOptions struct {
	// Window and Max size the per-client limiter when Store is nil.
	Window time.Duration
	Max    int
	// Message is the body of 429 responses.
	Message string
	// Store, when set, is used instead of a limiter built from Window and
	// Max, so several routes can share one budget.
	Store *ratelimit.Window
	// Global, when set, is consulted before the per-client limit.
	Global *rate.Limiter
	// Identify maps a request to its client identifier; defaults to ClientIdentifier.
	Identify func(*http.Request) string
}

// RateLimit rejects requests from clients that exceeded their budget within
// the sliding window. Rejected requests are answered with 429, are not
// counted, and never reach the next handler.
func RateLimit(opts RateLimitOptions) Middleware {
	store := opts.Store
	if store == nil {
		store = ratelimit.New(opts.Window, opts.Max)
	}
	identify := opts.Identify
	if identify == nil {
		identify = ClientIdentifier
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Global != nil && !opts.Global.Allow() {
				metrics.RateLimitRejections.WithLabelValues("global").Inc()
				apierr.WriteErrorWithContext(w, r, apierr.RateLimitGlobal())
				return
			}

			d := store.Allow(identify(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				metrics.RateLimitRejections.WithLabelValues("client").Inc()
				apierr.WriteErrorWithContext(w, r, apierr.RateLimited(opts.Message))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIdentifier returns the first X-Forwarded-For entry, else the host part
// of RemoteAddr, else "unknown". Clients without either share one budget.
func ClientIdentifier(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}

	return "unknown"
}
