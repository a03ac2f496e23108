package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTimeout_FastHandlerWins(t *testing.T) {
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Handler", "yes")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("done"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rr.Code)
	}
	if rr.Body.String() != "done" {
		t.Errorf("unexpected body %q", rr.Body.String())
	}
	if rr.Header().Get("X-Handler") != "yes" {
		t.Error("handler headers should be copied to the response")
	}
}

func TestTimeout_SlowHandlerGets408(t *testing.T) {
	lateErr := make(chan error, 1)
	h := Timeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		// Give the serving goroutine time to claim the response.
		time.Sleep(50 * time.Millisecond)
		_, err := w.Write([]byte("too late"))
		lateErr <- err
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusRequestTimeout {
		t.Fatalf("expected 408, got %d", rr.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("408 body is not JSON: %v", err)
	}
	if body["error"] != "Request timeout" {
		t.Errorf("unexpected error %q", body["error"])
	}
	if body["message"] != "Request timeout after 20ms" {
		t.Errorf("unexpected message %q", body["message"])
	}

	select {
	case err := <-lateErr:
		if !errors.Is(err, http.ErrHandlerTimeout) {
			t.Errorf("expected late write to fail with ErrHandlerTimeout, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never observed cancellation")
	}
}

func TestTimeout_PanicReachesRecover(t *testing.T) {
	h := Compose(Recover(false), Timeout(time.Second))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 from Recover, got %d", rr.Code)
	}
}

func TestTimeout_DisabledPassesThrough(t *testing.T) {
	h := Timeout(0)(okHandler())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}
