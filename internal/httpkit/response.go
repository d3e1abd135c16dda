package httpkit

import (
	"encoding/json"
	"net/http"
)

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteText writes a plain-text response with the given status.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// WriteErr writes the flat error shape `{"error": code}` used for
// validation failures.
func WriteErr(w http.ResponseWriter, status int, code string) {
	WriteJSON(w, status, map[string]any{"error": code})
}

// WriteErrMessage writes `{"error": code, "message": msg}` used for
// pipeline failures.
func WriteErrMessage(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, map[string]any{"error": code, "message": msg})
}
