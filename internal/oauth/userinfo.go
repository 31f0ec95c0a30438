// userinfo.go -- Authenticated profile fetch from the provider user info endpoint.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// FetchUserInfo GETs the provider profile with "Authorization: <type> <token>"
// and returns the body untouched. Field presence is the normalizer's concern.
// Every call goes upstream; nothing is cached.
// Only 200 counts as success: any other status, 2xx included, is an *UpstreamError.
func (c *Client) FetchUserInfo(ctx context.Context, p *Provider, tok *Token) (json.RawMessage, error) {
	ctx = c.withHTTPClient(ctx)

	// Discord and Spotify are not OIDC issuers, so the provider is built from
	// the configured endpoint instead of discovery.
	op := (&oidc.ProviderConfig{UserInfoURL: p.Endpoints.UserInfoURL}).NewProvider(ctx)

	info, err := op.UserInfo(ctx, oauth2.StaticTokenSource(tok.oauth2Token()))
	if err != nil {
		return nil, &UpstreamError{Provider: p.ID, Stage: StageUserInfo, Err: err}
	}

	var raw json.RawMessage
	if err := info.Claims(&raw); err != nil {
		return nil, &UpstreamError{Provider: p.ID, Stage: StageUserInfo, Err: fmt.Errorf("reading profile: %w", err)}
	}
	return raw, nil
}
