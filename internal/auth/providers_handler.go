// providers_handler.go -- Provider listing for GET /.
package auth

import (
	"net/http"

	"github.com/MGallo-Code/hermes/internal/oauth"
)

// ProviderListing describes one registered provider and the routes it serves.
type ProviderListing struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Routes      []string `json:"routes"`
}

// Listing returns one entry per registered provider, in registration order.
func Listing(reg *oauth.Registry) []ProviderListing {
	all := reg.All()
	out := make([]ProviderListing, 0, len(all))
	for _, p := range all {
		out = append(out, ProviderListing{
			Name:        p.Name,
			Description: p.Description,
			Routes:      p.Routes(),
		})
	}
	return out
}

// ListProviders handles GET / -- JSON array of providers and their routes.
func (h *AuthHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Listing(h.Providers))
}
