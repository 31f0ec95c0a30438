// flow.go -- Callback chain: code -> token -> profile -> normalized user.
package oauth

import (
	"context"
	"time"
)

// Login runs the callback chain for p: exchange code, fetch the profile with
// the resulting token, normalize it. The two upstream calls are sequential and
// either both succeed or the first failure is returned as *UpstreamError.
func (c *Client) Login(ctx context.Context, p *Provider, code string) (User, error) {
	start := time.Now()
	tok, err := c.Exchange(ctx, p, code)
	c.observe(p, StageTokenExchange, start, err)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	raw, err := c.FetchUserInfo(ctx, p, tok)
	c.observe(p, StageUserInfo, start, err)
	if err != nil {
		return nil, err
	}

	return Normalize(p.ID, raw), nil
}
