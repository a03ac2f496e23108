package middleware

import (
	"net/http"
	"strings"

	"github.com/onnwee/optimize-kit/backend/internal/apierr"
	"github.com/onnwee/optimize-kit/backend/internal/utils"
)

// DefaultMaxBodyBytes is the body limit used when none is configured (10MB).
const DefaultMaxBodyBytes = 10 * 1024 * 1024

// BodyLimit answers 413 when the declared Content-Length exceeds maxSize. The
// body is also wrapped in http.MaxBytesReader, so chunked or misdeclared
// bodies fail on read once they pass the limit.
func BodyLimit(maxSize int64) Middleware {
	if maxSize <= 0 {
		maxSize = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxSize {
				apierr.WriteErrorWithContext(w, r, apierr.PayloadTooLarge(maxSize))
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AllowMethods answers 405 with an Allow header for methods outside methods.
// Comparison is case-insensitive.
func AllowMethods(methods ...string) Middleware {
	allowed := utils.UpperAll(methods)
	allowHeader := strings.Join(allowed, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == "" || !utils.ContainsString(allowed, strings.ToUpper(r.Method)) {
				w.Header().Set("Allow", allowHeader)
				apierr.WriteErrorWithContext(w, r, apierr.MethodNotAllowed(allowed))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
