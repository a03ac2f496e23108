package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/onnwee/optimize-kit/backend/internal/logger"
)

// maxLoggedBody bounds how much of a request body IncludeBody records.
const maxLoggedBody = 4 << 10

// LoggerOptions configures Logger.
type LoggerOptions struct {
	// Verbose adds request headers and query to each entry.
	Verbose bool
	// IncludeBody adds the start of the request body.
	IncludeBody bool
}

// Logger writes one structured entry per request once the next handler returns.
func Logger(opts LoggerOptions) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			var body []byte
			if opts.IncludeBody && r.Body != nil && r.Body != http.NoBody {
				body, r.Body = peekBody(r.Body, maxLoggedBody)
			}

			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			duration := time.Since(start)
			args := []any{
				"method", r.Method,
				"url", r.URL.RequestURI(),
				"status", sw.Status(),
				"duration", strconv.FormatInt(duration.Milliseconds(), 10) + "ms",
				"bytes", sw.bytes,
			}
			if opts.Verbose {
				args = append(args, "headers", r.Header, "query", r.URL.Query())
			}
			if len(body) > 0 {
				args = append(args, "request_body", string(body))
			}

			logger.InfoContext(r.Context(), "api request", args...)
		})
	}
}

// peekBody reads up to limit bytes and returns them with a reader that
// replays them ahead of the rest of rc.
func peekBody(rc io.ReadCloser, limit int64) ([]byte, io.ReadCloser) {
	head, _ := io.ReadAll(io.LimitReader(rc, limit))
	return head, struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), rc), rc}
}
