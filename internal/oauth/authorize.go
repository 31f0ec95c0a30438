// authorize.go -- Authorize URL construction for the browser redirect.
package oauth

// AuthorizeURL returns the provider consent page URL carrying client_id,
// response_type=code, scope, and redirect_uri. Pure: no I/O, no state param,
// and the client secret is never part of the query. Keys are form-encoded
// in sorted order, so spaces in scope become "+".
func AuthorizeURL(p *Provider) string {
	return p.oauth2Config().AuthCodeURL("")
}
