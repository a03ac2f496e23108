// Package api mounts the demo HTTP API behind the optimization middleware.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/onnwee/optimize-kit/backend/internal/api/handlers"
	"github.com/onnwee/optimize-kit/backend/internal/apierr"
	"github.com/onnwee/optimize-kit/backend/internal/cache"
	"github.com/onnwee/optimize-kit/backend/internal/cacheheaders"
	"github.com/onnwee/optimize-kit/backend/internal/config"
	"github.com/onnwee/optimize-kit/backend/internal/middleware"
	"github.com/onnwee/optimize-kit/backend/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Deps are the stores and settings the router serves from. The caller owns
// the shared stores and their background goroutines.
type Deps struct {
	Config *config.Config
	// Cache backs response caching; nil disables it.
	Cache cache.Cache
	// Limiter is the per-client budget shared by routes without their own
	// rate_limit policy.
	Limiter *ratelimit.Window
	// Global caps the request rate across all clients.
	Global   *rate.Limiter
	Policies *config.RoutePolicies
	Catalog  *handlers.Catalog
	Users    *handlers.Directory
	Started  time.Time
}

// Router is the demo API. Route policies with their own rate_limit get
// private limiters, which Start sweeps and Close stops.
type Router struct {
	handler http.Handler

	mu       sync.Mutex
	limiters map[string]*ratelimit.Window
}

// endpoint holds the built-in settings of a route before policies apply.
type endpoint struct {
	methods []string
	cache   bool
	headers []cacheheaders.Header
}

// NewRouter builds the handler tree. Missing dependencies fall back to the
// loaded config and the demo data sets.
func NewRouter(d Deps) *Router {
	if d.Config == nil {
		d.Config = config.Load()
	}
	if d.Catalog == nil {
		d.Catalog = handlers.NewCatalog(handlers.DemoProducts())
	}
	if d.Users == nil {
		d.Users = handlers.DemoDirectory()
	}
	if d.Started.IsZero() {
		d.Started = time.Now()
	}
	cfg := d.Config

	rt := &Router{limiters: make(map[string]*ratelimit.Window)}
	r := mux.NewRouter()
	r.Use(
		mux.MiddlewareFunc(middleware.Trace),
		mux.MiddlewareFunc(middleware.Metrics),
		mux.MiddlewareFunc(middleware.Timeout(cfg.RequestTimeout)),
	)

	// Operational
	r.Handle("/health", handlers.Health(cfg.ServiceVersion, d.Started))
	r.Handle("/metrics", promhttp.Handler())

	// Products
	read := []string{http.MethodGet, http.MethodHead}
	r.Handle("/api/products", rt.route(d, "/api/products",
		endpoint{methods: read, cache: true, headers: cacheheaders.ShortTerm},
		http.HandlerFunc(d.Catalog.List)))
	r.Handle("/api/products/{id}", rt.route(d, "/api/products/{id}",
		endpoint{methods: read, cache: true, headers: cacheheaders.ShortTerm},
		middleware.FormatResponse()(apierr.Handler(d.Catalog.Get))))

	// Users
	createUser := middleware.Validate(handlers.CreateUserSchema)(apierr.Handler(d.Users.Create))
	r.Handle("/api/users", rt.route(d, "/api/users",
		endpoint{methods: []string{http.MethodGet, http.MethodPost}, headers: cacheheaders.NoCache},
		http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Method == http.MethodPost {
				createUser.ServeHTTP(w, req)
				return
			}
			d.Users.List(w, req)
		})))

	// Cache administration
	if d.Cache != nil {
		admin := handlers.NewCacheAdminHandler(d.Cache)
		r.Handle("/api/admin/cache/invalidate", rt.route(d, "/api/admin/cache/invalidate",
			endpoint{methods: []string{http.MethodPost}, headers: cacheheaders.NoCache},
			apierr.Handler(admin.InvalidateCache)))
		r.Handle("/api/admin/cache/stats", rt.route(d, "/api/admin/cache/stats",
			endpoint{methods: []string{http.MethodGet}, headers: cacheheaders.NoCache},
			http.HandlerFunc(admin.GetCacheStats)))
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	rt.handler = middleware.Compose(
		middleware.RequestID,
		middleware.Recover(cfg.IsDevelopment()),
		middleware.Logger(middleware.LoggerOptions{Verbose: cfg.LogLevel == "debug"}),
		middleware.CORS(cors),
		middleware.SecurityHeaders,
		middleware.BodyLimit(cfg.MaxBodyBytes),
		middleware.ResponseTime(),
		middleware.Compress(cfg.CompressThreshold),
	)(r)
	return rt
}

// route wraps h with the method, rate limit, header and cache layers for
// path, letting the longest matching route policy override each of them.
func (rt *Router) route(d Deps, path string, ep endpoint, h http.Handler) http.Handler {
	cfg := d.Config
	policy, _ := d.Policies.Match(path)

	methods := ep.methods
	if len(policy.Methods) > 0 {
		methods = policy.Methods
	}

	headers := ep.headers
	if preset, ok := cacheheaders.Lookup(policy.Headers); ok {
		headers = preset
	}

	var limit middleware.Middleware
	if cfg.EnableRateLimit {
		store := d.Limiter
		if policy.RateLimit != nil {
			store = rt.policyLimiter(policy)
		}
		if store != nil {
			limit = middleware.RateLimit(middleware.RateLimitOptions{Store: store, Global: d.Global})
		}
	}

	var etag, cached middleware.Middleware
	if ep.cache && !policy.NoCache && d.Cache != nil {
		ttl := cfg.CacheTTL
		if policy.CacheTTL > 0 {
			ttl = policy.CacheTTL
		}
		etag = middleware.ETag
		cached = middleware.CacheResponse(d.Cache, middleware.CacheOptions{TTL: ttl})
	}

	var hdrs middleware.Middleware
	if len(headers) > 0 {
		hdrs = middleware.Headers(headers)
	}

	return middleware.Compose(
		middleware.AllowMethods(methods...),
		limit,
		hdrs,
		etag,
		cached,
	)(h)
}

// policyLimiter returns the limiter for a policy prefix, so every route
// under one prefix shares its budget.
func (rt *Router) policyLimiter(p config.RoutePolicy) *ratelimit.Window {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if w, ok := rt.limiters[p.Prefix]; ok {
		return w
	}
	w := ratelimit.New(p.RateLimit.Window, p.RateLimit.Max)
	rt.limiters[p.Prefix] = w
	return w
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.handler.ServeHTTP(w, r)
}

// Start sweeps idle clients from the policy limiters every interval until
// ctx is done.
func (rt *Router) Start(ctx context.Context, interval time.Duration) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, w := range rt.limiters {
		w.StartSweeper(ctx, interval)
	}
}

// Close stops the policy limiter sweepers.
func (rt *Router) Close() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, w := range rt.limiters {
		w.Stop()
	}
}
