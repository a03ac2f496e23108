package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/onnwee/optimize-kit/backend/internal/apierr"
	"github.com/onnwee/optimize-kit/backend/internal/logger"
)

// Schema holds optional predicates over the parts of a request. A nil
// predicate accepts anything.
type Schema struct {
	// Body receives the JSON-decoded body, or nil when the body is empty.
	Body    func(body any) bool
	Query   func(query url.Values) bool
	Headers func(headers http.Header) bool
}

// Validate answers 400 when a predicate rejects the request. Predicates run
// in body, query, headers order; one that panics yields "Validation error".
// The body is restored for the next handler after it is read.
func Validate(schema Schema) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiErr := checkSchema(schema, r); apiErr != nil {
				apierr.WriteErrorWithContext(w, r, apiErr)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func checkSchema(schema Schema, r *http.Request) (apiErr *apierr.Error) {
	defer func() {
		if p := recover(); p != nil {
			logger.WarnContext(r.Context(), "Validator panicked", "panic", p, "path", r.URL.Path)
			apiErr = apierr.ValidationFailed()
		}
	}()

	if schema.Body != nil {
		body, err := readJSONBody(r)
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return apierr.PayloadTooLarge(mbe.Limit)
			}
			return apierr.InvalidBody()
		}
		if !schema.Body(body) {
			return apierr.InvalidBody()
		}
	}

	if schema.Query != nil && !schema.Query(r.URL.Query()) {
		return apierr.InvalidQuery()
	}

	if schema.Headers != nil && !schema.Headers(r.Header) {
		return apierr.InvalidHeaders()
	}

	return nil
}

// readJSONBody decodes the request body and puts the raw bytes back on r.
func readJSONBody(r *http.Request) (any, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	raw, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// SanitizeString trims whitespace, truncates to maxLength bytes and drops
// invalid UTF-8.
func SanitizeString(input string, maxLength int) string {
	input = strings.TrimSpace(input)
	if maxLength > 0 && len(input) > maxLength {
		input = input[:maxLength]
	}
	if !utf8.ValidString(input) {
		input = strings.ToValidUTF8(input, "")
	}
	return input
}
