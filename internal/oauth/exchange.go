// exchange.go -- Authorization code grant against the provider token endpoint.
package oauth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/oauth2"
)

// Token is what the relay keeps from a token response. Expiry, refresh token,
// and granted scope are received but dropped; nothing persists tokens.
type Token struct {
	Type        string
	AccessToken string
}

// LogValue keeps the access token out of logs.
func (t Token) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", t.Type),
		slog.String("access_token", "[redacted]"),
	)
}

func (t *Token) oauth2Token() *oauth2.Token {
	return &oauth2.Token{TokenType: t.Type, AccessToken: t.AccessToken}
}

// Exchange trades code for a token with a single POST to the token endpoint.
// code is forwarded verbatim, even when empty; the provider's rejection is the
// error surface. Credentials travel in the form body or a Basic header per
// p.Transport. No retry.
func (c *Client) Exchange(ctx context.Context, p *Provider, code string) (*Token, error) {
	tok, err := p.oauth2Config().Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		ue := &UpstreamError{Provider: p.ID, Stage: StageTokenExchange, Err: err}
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			ue.StatusCode = re.Response.StatusCode
		}
		return nil, ue
	}
	if tok.TokenType == "" || tok.AccessToken == "" {
		return nil, &UpstreamError{Provider: p.ID, Stage: StageTokenExchange, Err: errMissingToken}
	}
	return &Token{Type: tok.TokenType, AccessToken: tok.AccessToken}, nil
}
