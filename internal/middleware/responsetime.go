package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// ResponseTime sets X-Response-Time to the elapsed milliseconds, two
// decimals, just before the response headers are sent.
func ResponseTime() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{
				ResponseWriter: w,
				onHeader: func(h http.Header) {
					ms := float64(time.Since(start).Microseconds()) / 1000
					h.Set("X-Response-Time", strconv.FormatFloat(ms, 'f', 2, 64)+"ms")
				},
			}
			next.ServeHTTP(sw, r)
			if !sw.wroteHeader {
				sw.WriteHeader(http.StatusOK)
			}
		})
	}
}
