package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func hasName(body any) bool {
	m, ok := body.(map[string]any)
	if !ok {
		return false
	}
	name, _ := m["name"].(string)
	return name != ""
}

func TestValidate(t *testing.T) {
	schema := Schema{
		Body:    hasName,
		Query:   func(q url.Values) bool { return q.Get("bad") == "" },
		Headers: func(h http.Header) bool { return h.Get("X-Reject") == "" },
	}

	tests := []struct {
		name         string
		target       string
		body         string
		header       string
		expectStatus int
		expectError  string
	}{
		{"valid", "/", `{"name":"Ada"}`, "", http.StatusOK, ""},
		{"body rejected", "/", `{"name":""}`, "", http.StatusBadRequest, "Invalid request body"},
		{"malformed body", "/", `{"name":`, "", http.StatusBadRequest, "Invalid request body"},
		{"query rejected", "/?bad=1", `{"name":"Ada"}`, "", http.StatusBadRequest, "Invalid query parameters"},
		{"headers rejected", "/", `{"name":"Ada"}`, "1", http.StatusBadRequest, "Invalid headers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := Validate(schema)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				seen = string(b)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("POST", tt.target, strings.NewReader(tt.body))
			if tt.header != "" {
				req.Header.Set("X-Reject", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.expectStatus {
				t.Fatalf("expected %d, got %d", tt.expectStatus, rr.Code)
			}
			if tt.expectError == "" {
				if seen != tt.body {
					t.Errorf("handler should see the original body, got %q", seen)
				}
				return
			}
			var body map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body["error"] != tt.expectError {
				t.Errorf("expected %q, got %q", tt.expectError, body["error"])
			}
		})
	}
}

func TestValidate_PanickingValidator(t *testing.T) {
	h := Validate(Schema{
		Query: func(q url.Values) bool { panic("validator bug") },
	})(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Validation error") {
		t.Errorf("unexpected body %q", rr.Body.String())
	}
}

func TestValidate_EmptyBodyIsNil(t *testing.T) {
	var got any = "unset"
	h := Validate(Schema{Body: func(b any) bool { got = b; return true }})(okHandler())

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/", nil))
	if got != nil {
		t.Errorf("expected nil body, got %v", got)
	}
}

func TestValidate_BodyOverLimit(t *testing.T) {
	h := Compose(BodyLimit(8), Validate(Schema{Body: func(any) bool { return true }}))(okHandler())

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"long enough"}`))
	req.ContentLength = -1
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rr.Code)
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		expected  string
	}{
		{"trims whitespace", "  hello  ", 100, "hello"},
		{"truncates", "hello world", 5, "hello"},
		{"drops invalid utf8", "ok\xff", 100, "ok"},
		{"no limit", "abc", 0, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeString(tt.input, tt.maxLength); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
