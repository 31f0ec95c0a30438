// responses.go -- Package-wide HTTP response helpers.
//
// Fixed messages are plain ASCII and written directly; anything carrying
// upstream text goes through encoding/json so it is escaped.
package auth

import (
	"encoding/json"
	"net/http"
)

// errorBody is the 500 payload: a fixed message plus the underlying cause.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// InternalServerError logs the error and returns a 500 JSON response with the
// cause under "error". Callers pass upstream failures only; the relay holds no
// internal state worth hiding.
func InternalServerError(w http.ResponseWriter, r *http.Request, err error) {
	logError(r, "internal server error", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Message: "Internal Server Error",
		Error:   err.Error(),
	})
}

// NotFound returns a 404 JSON response.
func NotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"message":"not found"}`))
}
