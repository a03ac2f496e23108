package apierr

import (
	"errors"
	"net/http"
)

// Handler is an http.Handler that may fail. A returned *Error is written to
// the client as-is. Any other error is re-raised as a panic so the nearest
// recovery middleware reports it as a 500; without one, net/http's own
// recovery applies.
type Handler func(w http.ResponseWriter, r *http.Request) error

// ServeHTTP implements http.Handler.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := h(w, r)
	if err == nil {
		return
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		WriteErrorWithContext(w, r, apiErr)
		return
	}
	panic(err)
}
