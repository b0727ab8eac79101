// Package httputil centralizes JSON response rendering so every handler
// emits the same envelope.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "medfund/pkg/domain-errors"
)

// WriteJSON renders a payload with the given status. Encoding failures are
// unrecoverable at this point; the status line has already been written.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// WriteError renders a coded domain error as {error, error_description}.
// Internal errors omit the description so infrastructure details never
// reach clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal {
		if msg := dErrors.Message(err); msg != "" {
			body["error_description"] = msg
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}
