package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/onnwee/optimize-kit/backend/internal/apierr"
	"github.com/onnwee/optimize-kit/backend/internal/errorreporting"
	"github.com/onnwee/optimize-kit/backend/internal/logger"
	"github.com/onnwee/optimize-kit/backend/internal/metrics"
)

// Recover turns a panic further down the chain into a 500 response and
// reports it to Sentry when enabled. With dev set the body also carries the
// panic message and stack. http.ErrAbortHandler is re-raised untouched.
func Recover(dev bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				value, stack := rec, debug.Stack()
				if pe, ok := rec.(panicError); ok {
					value, stack = pe.value, pe.stack
				}

				logger.ErrorContext(r.Context(), "Panic recovered",
					"error", value,
					"stack", string(stack),
					"method", r.Method,
					"path", r.URL.Path,
				)
				metrics.APIPanicsRecovered.Inc()
				errorreporting.CapturePanic(r, value, stack)

				apiErr := apierr.Internal()
				if dev {
					apiErr.WithField("message", panicMessage(value)).
						WithField("stack", string(stack))
				}
				apierr.WriteError(w, apiErr)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func panicMessage(v any) string {
	switch e := v.(type) {
	case error:
		return e.Error()
	case string:
		return e
	default:
		return fmt.Sprintf("%v", e)
	}
}
