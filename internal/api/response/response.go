// Package response provides helpers for sending consistent JSON
// responses and the {error, details} error shape used across the API.
package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the error body returned by every endpoint. Details
// is optional context, typically the underlying error string.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON sends data as JSON with the given status code. A nil data
// sends only the status code. Encoding errors are logged, not fatal;
// the status line is already on the wire by then.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode JSON response: %v", err)
	}
}

// RespondError sends a structured error response.
//
// Example:
//
//	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	RespondJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}
