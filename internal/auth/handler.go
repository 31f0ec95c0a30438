// handler.go -- AuthHandler and the dependencies it is built from.
package auth

import (
	"context"
	"net/http"

	"github.com/MGallo-Code/hermes/internal/oauth"
	"github.com/go-chi/chi/v5"
)

// LoginFlow runs the provider-facing half of a callback.
// Satisfied by *oauth.Client; defined here at the consumer.
type LoginFlow interface {
	// Login exchanges code and returns the normalized profile.
	// Failures are *oauth.UpstreamError carrying the failed stage.
	Login(ctx context.Context, p *oauth.Provider, code string) (oauth.User, error)
}

// AuthHandler serves the per-provider redirect and callback routes.
type AuthHandler struct {
	Providers *oauth.Registry
	Flow      LoginFlow

	// Metrics is optional; nil disables instrumentation.
	Metrics *Metrics
}

// oauthProvider resolves the {provider} URL param against the registry.
// Writes a 404 and returns false when the provider is unknown or not configured.
func (h *AuthHandler) oauthProvider(r *http.Request, w http.ResponseWriter) (*oauth.Provider, bool) {
	name := chi.URLParam(r, "provider")
	id, err := oauth.ParseID(name)
	if err != nil {
		logDebug(r, "unknown provider requested", "provider", name)
		NotFound(w)
		return nil, false
	}
	p, ok := h.Providers.Lookup(id)
	if !ok {
		logDebug(r, "provider not configured", "provider", id)
		NotFound(w)
		return nil, false
	}
	return p, true
}
