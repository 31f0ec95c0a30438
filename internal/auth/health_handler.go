// health_handler.go -- Health check handler for GET /health.
package auth

import (
	"net/http"
)

// CheckHealth handles GET /health. The relay has no backing stores, so being
// able to answer is the whole check.
func (h *AuthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
