package middleware

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
	"time"
)

// envelope is the body written by FormatResponse.
type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Timestamp  string          `json:"timestamp"`
}

// FormatResponse wraps JSON response bodies as
// {"success", "statusCode", "data", "timestamp"}. Non-JSON and empty
// responses are passed through unchanged.
func FormatResponse() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bw := newBufferWriter(w)
			next.ServeHTTP(bw, r)

			body := bw.Body()
			if len(body) == 0 || !isJSON(w.Header().Get("Content-Type")) || !json.Valid(body) {
				bw.flush()
				return
			}

			status := bw.Status()
			out, err := json.Marshal(envelope{
				Success:    status >= 200 && status < 300,
				StatusCode: status,
				Data:       body,
				Timestamp:  isoTimestamp(time.Now()),
			})
			if err != nil {
				bw.flush()
				return
			}
			w.Header().Del("Content-Length")
			bw.send(append(out, '\n'))
		})
	}
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
