package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/onnwee/optimize-kit/backend/internal/apierr"
	"github.com/onnwee/optimize-kit/backend/internal/cache"
	"github.com/onnwee/optimize-kit/backend/internal/logger"
	"github.com/onnwee/optimize-kit/backend/internal/middleware"
)

// CacheAdminHandler handles cache administration endpoints.
type CacheAdminHandler struct {
	cache cache.Cache
}

// NewCacheAdminHandler creates a new cache admin handler.
func NewCacheAdminHandler(c cache.Cache) *CacheAdminHandler {
	return &CacheAdminHandler{cache: c}
}

// InvalidateCache removes cached responses whose keys match the pattern
// query parameter, or all of them when it is absent.
// POST /api/admin/cache/invalidate?pattern=
func (h *CacheAdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) error {
	pattern := r.URL.Query().Get("pattern")
	removed, err := middleware.InvalidateCache(h.cache, pattern)
	if err != nil {
		return apierr.BadRequest("Invalid pattern").WithField("pattern", pattern)
	}
	logger.InfoContext(r.Context(), "cache invalidated", "pattern", pattern, "removed", removed)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"message": "Cache invalidated successfully",
		"pattern": pattern,
		"removed": removed,
	})
}

// GetCacheStats returns current cache statistics.
// GET /api/admin/cache/stats
func (h *CacheAdminHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(middleware.CacheStats(h.cache))
}
