// provider.go -- Provider strategy, default endpoints, and the provider registry.
package oauth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// ID identifies a supported OAuth provider. Also used as the route prefix.
type ID string

const (
	Discord ID = "discord"
	Google  ID = "google"
	Spotify ID = "spotify"
)

// ErrUnknownProvider is returned when an ID is not one of the supported providers.
var ErrUnknownProvider = errors.New("oauth: unknown provider")

// ErrInvalidProvider is returned by NewProvider when a required field is empty.
var ErrInvalidProvider = errors.New("oauth: invalid provider configuration")

// ParseID maps a string onto one of the supported provider IDs.
func ParseID(s string) (ID, error) {
	switch id := ID(strings.ToLower(s)); id {
	case Discord, Google, Spotify:
		return id, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
}

// CredentialTransport selects how client credentials reach the token endpoint.
type CredentialTransport int

const (
	// CredentialsInBody sends client_id and client_secret as form fields.
	CredentialsInBody CredentialTransport = iota
	// CredentialsInHeader sends them as an HTTP Basic Authorization header.
	CredentialsInHeader
)

// Endpoints holds the three absolute URIs a provider exposes.
type Endpoints struct {
	AuthorizeURL string
	TokenURL     string
	UserInfoURL  string
}

// Credentials is the client registration issued by a provider.
// ClientSecret must never reach the browser.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Provider is the per-provider strategy driving the generic login flow:
// where to send the browser, where to exchange the code, how to authenticate
// that exchange, and where to fetch the profile. Immutable once built; safe
// for concurrent reads.
type Provider struct {
	ID          ID
	Name        string
	Description string
	Endpoints   Endpoints
	Scope       string
	Transport   CredentialTransport

	Credentials
}

type providerDefaults struct {
	name      string
	endpoints Endpoints
	scope     string
	transport CredentialTransport
}

var defaults = map[ID]providerDefaults{
	Discord: {
		name: "Discord",
		endpoints: Endpoints{
			AuthorizeURL: "https://discord.com/api/v10/oauth2/authorize",
			TokenURL:     "https://discord.com/api/v10/oauth2/token",
			UserInfoURL:  "https://discord.com/api/v10/users/@me",
		},
		scope:     "identify",
		transport: CredentialsInBody,
	},
	Google: {
		name: "Google",
		endpoints: Endpoints{
			AuthorizeURL: "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:     "https://oauth2.googleapis.com/token",
			UserInfoURL:  "https://www.googleapis.com/oauth2/v1/userinfo",
		},
		scope:     "profile",
		transport: CredentialsInBody,
	},
	Spotify: {
		name: "Spotify",
		endpoints: Endpoints{
			AuthorizeURL: "https://accounts.spotify.com/authorize",
			TokenURL:     "https://accounts.spotify.com/api/token",
			UserInfoURL:  "https://api.spotify.com/v1/me",
		},
		scope:     "user-read-private user-read-email user-top-read",
		transport: CredentialsInHeader,
	},
}

// DefaultEndpoints returns the production endpoints for id.
func DefaultEndpoints(id ID) (Endpoints, bool) {
	d, ok := defaults[id]
	return d.endpoints, ok
}

// NewProvider builds the Provider for id from its credentials.
// Non-empty fields of override replace the matching default endpoint.
// Returns ErrUnknownProvider for an unsupported id and ErrInvalidProvider when
// any field ends up empty.
func NewProvider(id ID, creds Credentials, override Endpoints) (*Provider, error) {
	d, ok := defaults[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}

	ep := d.endpoints
	if override.AuthorizeURL != "" {
		ep.AuthorizeURL = override.AuthorizeURL
	}
	if override.TokenURL != "" {
		ep.TokenURL = override.TokenURL
	}
	if override.UserInfoURL != "" {
		ep.UserInfoURL = override.UserInfoURL
	}

	p := &Provider{
		ID:          id,
		Name:        d.name + " Provider",
		Description: d.name + " OAuth2 Provider",
		Endpoints:   ep,
		Scope:       d.scope,
		Transport:   d.transport,
		Credentials: creds,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// validate reports the first empty field; every field is required before serving.
func (p *Provider) validate() error {
	fields := []struct{ name, value string }{
		{"authorize url", p.Endpoints.AuthorizeURL},
		{"token url", p.Endpoints.TokenURL},
		{"userinfo url", p.Endpoints.UserInfoURL},
		{"scope", p.Scope},
		{"client id", p.ClientID},
		{"client secret", p.ClientSecret},
		{"redirect uri", p.RedirectURI},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: %s %s is empty", ErrInvalidProvider, p.ID, f.name)
		}
	}
	return nil
}

// Routes returns the relay paths served for this provider.
func (p *Provider) Routes() []string {
	prefix := "/" + string(p.ID)
	return []string{prefix + "/auth", prefix + "/auth/callback"}
}

// oauth2Config maps the provider onto x/oauth2. AuthStyle carries the
// body-vs-Basic credential split; it is never auto-detected.
func (p *Provider) oauth2Config() *oauth2.Config {
	style := oauth2.AuthStyleInParams
	if p.Transport == CredentialsInHeader {
		// x/oauth2 query-escapes id and secret before base64; alphanumeric credentials are unaffected.
		style = oauth2.AuthStyleInHeader
	}
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.RedirectURI,
		Scopes:       strings.Fields(p.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.Endpoints.AuthorizeURL,
			TokenURL:  p.Endpoints.TokenURL,
			AuthStyle: style,
		},
	}
}

// Registry is the fixed set of configured providers, in registration order.
type Registry struct {
	byID  map[ID]*Provider
	order []ID
}

// NewRegistry indexes the given providers by ID. A later provider with a
// duplicate ID replaces the earlier one but keeps its position.
func NewRegistry(providers ...*Provider) *Registry {
	r := &Registry{byID: make(map[ID]*Provider, len(providers))}
	for _, p := range providers {
		if _, seen := r.byID[p.ID]; !seen {
			r.order = append(r.order, p.ID)
		}
		r.byID[p.ID] = p
	}
	return r
}

// Lookup returns the provider registered under id.
func (r *Registry) Lookup(id ID) (*Provider, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// All returns the registered providers in registration order.
func (r *Registry) All() []*Provider {
	out := make([]*Provider, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
