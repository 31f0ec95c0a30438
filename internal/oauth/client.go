// client.go -- Outbound HTTP client shared by the exchange and user info stages.
package oauth

import (
	"context"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// DefaultTimeout bounds each outbound provider call when no client is supplied.
const DefaultTimeout = 10 * time.Second

// Client performs the provider-facing half of a login: code exchange and
// profile fetch. Holds no per-request state; one Client serves all requests.
type Client struct {
	httpClient *http.Client
	observer   StageObserver
}

// StageObserver is told how long each upstream stage of a login took.
// err is nil on success. Implementations must be safe for concurrent use.
type StageObserver interface {
	ObserveStage(provider ID, stage Stage, elapsed time.Duration, err error)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithObserver reports stage timings of every Login to o.
func WithObserver(o StageObserver) ClientOption {
	return func(c *Client) { c.observer = o }
}

// NewClient returns a Client using hc for every outbound call.
// A nil hc gets a client with DefaultTimeout.
func NewClient(hc *http.Client, opts ...ClientOption) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	c := &Client{httpClient: hc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) observe(p *Provider, stage Stage, start time.Time, err error) {
	if c.observer != nil {
		c.observer.ObserveStage(p.ID, stage, time.Since(start), err)
	}
}

// withHTTPClient attaches the client to ctx where both x/oauth2 and go-oidc look for it.
func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return oidc.ClientContext(ctx, c.httpClient)
}
