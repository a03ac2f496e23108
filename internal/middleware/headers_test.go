package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onnwee/optimize-kit/backend/internal/cacheheaders"
)

func TestHeaders_AppliesPreset(t *testing.T) {
	rr := httptest.NewRecorder()
	Headers(cacheheaders.NoCache)(okHandler()).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	for _, h := range cacheheaders.NoCache {
		if got := rr.Header().Get(h.Key); got != h.Value {
			t.Errorf("%s: expected %q, got %q", h.Key, h.Value, got)
		}
	}
}

func TestHeaders_HandlerOverrides(t *testing.T) {
	h := Headers(cacheheaders.ShortTerm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "private")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Header().Get("Cache-Control") != "private" {
		t.Errorf("handler value should win, got %q", rr.Header().Get("Cache-Control"))
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(okHandler())

	t.Run("plain http", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

		expected := map[string]string{
			"X-Content-Type-Options": "nosniff",
			"X-Frame-Options":        "DENY",
			"Referrer-Policy":        "strict-origin-when-cross-origin",
		}
		for k, v := range expected {
			if got := rr.Header().Get(k); got != v {
				t.Errorf("%s: expected %q, got %q", k, v, got)
			}
		}
		if rr.Header().Get("Strict-Transport-Security") != "" {
			t.Error("HSTS should only be sent over TLS")
		}
	})

	t.Run("tls", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.TLS = &tls.ConnectionState{}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Header().Get("Strict-Transport-Security") == "" {
			t.Error("expected HSTS over TLS")
		}
	})
}
