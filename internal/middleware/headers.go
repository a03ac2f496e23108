package middleware

import (
	"net/http"

	"github.com/onnwee/optimize-kit/backend/internal/cacheheaders"
)

// Headers sets each preset header before calling the next handler, which
// may still override them.
func Headers(preset []cacheheaders.Header) Middleware {
	headers := append([]cacheheaders.Header(nil), preset...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, kv := range headers {
				h.Set(kv.Key, kv.Value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders applies the security preset, adding HSTS on TLS connections.
func SecurityHeaders(next http.Handler) http.Handler {
	inner := Headers(cacheheaders.Security)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		inner.ServeHTTP(w, r)
	})
}
