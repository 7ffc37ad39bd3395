// Package httputil writes the shell's JSON responses and error envelopes.
package httputil

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON error envelope returned by every view.
type ErrorResponse struct {
	Error       string            `json:"error"`
	Description string            `json:"error_description,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an error envelope. Internal errors never carry a description
// so backend details do not leak into the view.
func WriteError(w http.ResponseWriter, status int, code, description string) {
	if status >= http.StatusInternalServerError {
		description = ""
	}
	WriteJSON(w, status, ErrorResponse{Error: code, Description: description})
}

// WriteFieldErrors writes a validation envelope with per-field messages.
func WriteFieldErrors(w http.ResponseWriter, description string, fields map[string]string) {
	WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:       "validation_failed",
		Description: description,
		Fields:      fields,
	})
}
