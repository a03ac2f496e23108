package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantStatus int
		wantKeys   []string
		absentKeys []string
	}{
		{
			name:       "data only",
			opts:       Options{Data: []int{1, 2}},
			wantStatus: http.StatusOK,
			wantKeys:   []string{"data"},
			absentKeys: []string{"error", "message", "meta"},
		},
		{
			name:       "error with status",
			opts:       Options{Status: http.StatusNotFound, Error: "Not found"},
			wantStatus: http.StatusNotFound,
			wantKeys:   []string{"error"},
			absentKeys: []string{"data"},
		},
		{
			name:       "everything",
			opts:       Options{Status: http.StatusCreated, Data: map[string]int{"id": 1}, Message: "created", Meta: map[string]any{"v": 1}},
			wantStatus: http.StatusCreated,
			wantKeys:   []string{"data", "message", "meta"},
			absentKeys: []string{"error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			if err := JSON(rr, tt.opts); err != nil {
				t.Fatalf("JSON: %v", err)
			}

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if rr.Header().Get("Content-Type") != "application/json" {
				t.Errorf("unexpected content type %q", rr.Header().Get("Content-Type"))
			}

			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			for _, k := range tt.wantKeys {
				if _, ok := body[k]; !ok {
					t.Errorf("expected key %q in %v", k, body)
				}
			}
			for _, k := range tt.absentKeys {
				if _, ok := body[k]; ok {
					t.Errorf("unexpected key %q in %v", k, body)
				}
			}
		})
	}
}

func TestData(t *testing.T) {
	rr := httptest.NewRecorder()
	if err := Data(rr, "ok"); err != nil {
		t.Fatalf("Data: %v", err)
	}
	if rr.Body.String() != "{\"data\":\"ok\"}\n" {
		t.Errorf("unexpected body %q", rr.Body.String())
	}
}
