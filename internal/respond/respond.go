// Package respond writes JSON responses in the API's common envelope.
package respond

import (
	"encoding/json"
	"net/http"
)

// Options describes one response. Empty members are left out of the body.
type Options struct {
	Status  int
	Data    any
	Error   string
	Message string
	Meta    map[string]any
}

type body struct {
	Data    any            `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// JSON writes opts as {"data", "message", "error", "meta"} with the given
// status, 200 when unset.
func JSON(w http.ResponseWriter, opts Options) error {
	status := opts.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body{
		Data:    opts.Data,
		Message: opts.Message,
		Error:   opts.Error,
		Meta:    opts.Meta,
	})
}

// Data is shorthand for a 200 response carrying only data.
func Data(w http.ResponseWriter, data any) error {
	return JSON(w, Options{Data: data})
}
