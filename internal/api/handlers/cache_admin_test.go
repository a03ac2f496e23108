package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onnwee/optimize-kit/backend/internal/apierr"
	"github.com/onnwee/optimize-kit/backend/internal/cache"
	"github.com/onnwee/optimize-kit/backend/internal/middleware"
)

func seededCache() cache.Cache {
	c := cache.NewMemory().Bytes()
	c.Set("GET:/api/products:{}", []byte("a"), time.Minute)
	c.Set("GET:/api/products/1:{}", []byte("b"), time.Minute)
	c.Set("GET:/api/users:{}", []byte("c"), time.Minute)
	return c
}

func TestCacheAdmin_Invalidate(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		wantCode    int
		wantRemoved float64
		wantLeft    int64
	}{
		{"all", "/api/admin/cache/invalidate", http.StatusOK, 3, 0},
		{"pattern", "/api/admin/cache/invalidate?pattern=products", http.StatusOK, 2, 1},
		{"invalid pattern", "/api/admin/cache/invalidate?pattern=%28", http.StatusBadRequest, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := seededCache()
			h := apierr.Handler(NewCacheAdminHandler(c).InvalidateCache)

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, tt.target, nil))
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			if got := c.Stats().Items; got != tt.wantLeft {
				t.Errorf("expected %d entries left, got %d", tt.wantLeft, got)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var out map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if out["removed"] != tt.wantRemoved {
				t.Errorf("expected removed %v, got %v", tt.wantRemoved, out["removed"])
			}
		})
	}
}

func TestCacheAdmin_Stats(t *testing.T) {
	c := seededCache()
	c.Get("GET:/api/users:{}")
	c.Get("missing")

	rr := httptest.NewRecorder()
	NewCacheAdminHandler(c).GetCacheStats(rr, httptest.NewRequest(http.MethodGet, "/api/admin/cache/stats", nil))

	var out middleware.CacheStatsSnapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Size != 3 || out.Hits != 1 || out.Misses != 1 {
		t.Errorf("unexpected stats %+v", out)
	}
	if out.Timestamp == "" {
		t.Error("expected timestamp")
	}
}
