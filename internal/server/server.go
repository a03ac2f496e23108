// Package server wires configuration into a running HTTP server: the
// response cache and rate limiter stores, their background sweepers, the
// metrics collector and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/onnwee/optimize-kit/backend/internal/api"
	"github.com/onnwee/optimize-kit/backend/internal/cache"
	"github.com/onnwee/optimize-kit/backend/internal/config"
	"github.com/onnwee/optimize-kit/backend/internal/errorreporting"
	"github.com/onnwee/optimize-kit/backend/internal/logger"
	"github.com/onnwee/optimize-kit/backend/internal/metrics"
	"github.com/onnwee/optimize-kit/backend/internal/ratelimit"
	"github.com/onnwee/optimize-kit/backend/internal/tracing"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

// Server owns the stores behind the API and the listener serving it.
type Server struct {
	cfg       *config.Config
	cache     cache.Cache
	memory    *cache.Memory
	lru       *cache.LRUCache
	limiter   *ratelimit.Window
	router    *api.Router
	collector *metrics.Collector
	http      *http.Server
}

// InitCache builds the response cache backend selected by the config.
func InitCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.CacheBackend == "lru" {
		c, err := cache.NewLRU(cfg.CacheLRUMaxMB, cfg.CacheLRUMaxEntries)
		if err != nil {
			return nil, fmt.Errorf("create lru cache: %w", err)
		}
		return c, nil
	}
	return cache.NewMemory().Bytes(), nil
}

// NewServer constructs the stores and router without starting anything.
func NewServer(cfg *config.Config) (*Server, error) {
	c, err := InitCache(cfg)
	if err != nil {
		return nil, err
	}

	var policies *config.RoutePolicies
	if cfg.RoutesFile != "" {
		policies, err = config.LoadRoutes(cfg.RoutesFile)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded route policies", "file", cfg.RoutesFile, "prefixes", policies.Prefixes())
	}

	var global *rate.Limiter
	if cfg.RateLimitGlobal > 0 {
		global = rate.NewLimiter(rate.Limit(cfg.RateLimitGlobal), cfg.RateLimitGlobalBurst)
	}

	s := &Server{
		cfg:     cfg,
		cache:   c,
		limiter: ratelimit.New(cfg.RateLimitWindow, cfg.RateLimitMax),
	}
	switch v := c.(type) {
	case *cache.ByteView:
		s.memory = v.Store()
	case *cache.LRUCache:
		s.lru = v
	}

	s.router = api.NewRouter(api.Deps{
		Config:   cfg,
		Cache:    c,
		Limiter:  s.limiter,
		Global:   global,
		Policies: policies,
		Started:  time.Now(),
	})
	s.collector = metrics.NewCollector(c, s.limiter, 0)
	s.http = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the background workers and blocks serving HTTP until ctx is
// done, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	s.startWorkers(ctx)
	defer s.stopWorkers()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", s.cfg.ListenAddr, "cache", s.cfg.CacheBackend)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) startWorkers(ctx context.Context) {
	if s.memory != nil {
		s.memory.StartJanitor(ctx, s.cfg.CacheSweepInterval)
	}
	s.limiter.StartSweeper(ctx, s.cfg.RateLimitSweepInterval)
	s.router.Start(ctx, s.cfg.RateLimitSweepInterval)
	go s.collector.Start(ctx)
}

func (s *Server) stopWorkers() {
	s.collector.Stop()
	s.router.Close()
	s.limiter.Stop()
	if s.memory != nil {
		s.memory.Close()
	}
	if s.lru != nil {
		s.lru.Close()
	}
}

// Run initializes tracing and error reporting from cfg, then serves until
// ctx is done.
func Run(ctx context.Context, cfg *config.Config) error {
	shutdownTracing, err := tracing.Init("optimize-kit", tracing.Config{
		Enabled:        cfg.OTELEnabled,
		Endpoint:       cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		ServiceVersion: cfg.ServiceVersion,
	})
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(tctx); err != nil {
				logger.Warn("tracing shutdown failed", "error", err)
			}
		}()
	}

	if err := errorreporting.Init(errorreporting.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     cfg.SentryRelease,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		logger.Warn("error reporting disabled", "error", err)
	}
	defer errorreporting.Flush(2 * time.Second)

	s, err := NewServer(cfg)
	if err != nil {
		return err
	}
	return s.Start(ctx)
}
