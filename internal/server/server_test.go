package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/onnwee/optimize-kit/backend/internal/cache"
	"github.com/onnwee/optimize-kit/backend/internal/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		ListenAddr:             "127.0.0.1:0",
		CacheBackend:           "memory",
		CacheTTL:               time.Minute,
		CacheSweepInterval:     time.Minute,
		CacheLRUMaxMB:          1,
		CacheLRUMaxEntries:     100,
		EnableRateLimit:        true,
		RateLimitWindow:        time.Minute,
		RateLimitMax:           100,
		RateLimitSweepInterval: time.Minute,
		RequestTimeout:         time.Second,
		MaxBodyBytes:           1 << 20,
		CompressThreshold:      1024,
		CORSAllowedOrigins:     []string{"*"},
		ServiceVersion:         "test",
	}
}

func TestInitCache(t *testing.T) {
	cfg := baseConfig()
	c, err := InitCache(cfg)
	if err != nil {
		t.Fatalf("InitCache: %v", err)
	}
	if _, ok := c.(*cache.ByteView); !ok {
		t.Errorf("expected memory backend, got %T", c)
	}

	cfg.CacheBackend = "lru"
	c, err = InitCache(cfg)
	if err != nil {
		t.Fatalf("InitCache lru: %v", err)
	}
	lru, ok := c.(*cache.LRUCache)
	if !ok {
		t.Fatalf("expected lru backend, got %T", c)
	}
	lru.Close()
}

func TestNewServer_Serves(t *testing.T) {
	s, err := NewServer(baseConfig())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer s.stopWorkers()

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}

func TestNewServer_RoutesFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "routes.yaml")
	if err := os.WriteFile(good, []byte("routes:\n  - prefix: /api/products\n    cache_ttl: 5m\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("routes:\n  - prefix: nope\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := baseConfig()
	cfg.RoutesFile = good
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	s.stopWorkers()

	cfg.RoutesFile = bad
	if _, err := NewServer(cfg); err == nil {
		t.Error("expected invalid route file to fail")
	}
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	cfg := baseConfig()
	cfg.ListenAddr = addr
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/health")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never answered: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
