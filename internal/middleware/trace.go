package middleware

import (
	"net/http"

	"github.com/onnwee/optimize-kit/backend/internal/logger"
	"github.com/onnwee/optimize-kit/backend/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Trace opens a server span per request, continuing any propagated trace.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartServerSpan(r)
		defer span.End()

		if id := logger.RequestID(ctx); id != "" {
			span.SetAttributes(attribute.String("request.id", id))
		}

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r.WithContext(ctx))

		status := sw.Status()
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.String("http.route", endpointLabel(r)),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}
