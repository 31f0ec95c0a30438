// oauth_handler.go -- Generic OAuth2 redirect and callback handlers.
// Provider-specific logic lives in internal/oauth; adding a provider means a
// new oauth.ID with its defaults and normalizer, then registering it in config.
package auth

import (
	"errors"
	"net/http"

	"github.com/MGallo-Code/hermes/internal/oauth"
	"github.com/gofrs/uuid/v5"
)

// Authorize handles GET /{provider}/auth -- redirects the browser to the
// provider's consent page. No state or PKCE; the relay keeps no session.
func (h *AuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	p, ok := h.oauthProvider(r, w)
	if !ok {
		return
	}

	h.Metrics.observeRedirect(p.ID)
	logDebug(r, "redirecting to provider", "provider", p.ID)
	http.Redirect(w, r, oauth.AuthorizeURL(p), http.StatusFound)
}

// Callback handles GET /{provider}/auth/callback -- exchanges the authorization
// code, fetches the profile, and answers with the normalized user.
// Any upstream failure becomes a 500 carrying the cause.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	p, ok := h.oauthProvider(r, w)
	if !ok {
		return
	}

	flowID, err := uuid.NewV7()
	if err != nil {
		InternalServerError(w, r, err)
		return
	}

	q := r.URL.Query()
	code := q.Get("code")
	if code == "" {
		// Forwarded anyway; the provider's rejection is reported to the caller.
		logDebug(r, "oauth callback: missing code",
			"provider", p.ID,
			"flow_id", flowID,
			"provider_error", q.Get("error"),
		)
	}

	user, err := h.Flow.Login(r.Context(), p, code)
	if err != nil {
		stage, status := "unknown", 0
		var ue *oauth.UpstreamError
		if errors.As(err, &ue) {
			stage, status = string(ue.Stage), ue.StatusCode
		}
		logWarn(r, "oauth callback: login failed",
			"provider", p.ID,
			"flow_id", flowID,
			"stage", stage,
			"upstream_status", status,
			"error", err,
		)
		h.Metrics.observeCallback(p.ID, stage)
		InternalServerError(w, r, err)
		return
	}

	h.Metrics.observeCallback(p.ID, outcomeOK)
	logInfo(r, "oauth callback: user fetched", "provider", p.ID, "flow_id", flowID)
	writeJSON(w, http.StatusOK, user)
}
