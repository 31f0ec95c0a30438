// errors.go -- Upstream failure type shared by the exchange and user info stages.
package oauth

import (
	"errors"
	"fmt"
)

// Stage names the upstream call that failed during a callback.
type Stage string

const (
	StageTokenExchange Stage = "token_exchange"
	StageUserInfo      Stage = "user_info"
)

// errMissingToken marks a 2xx token response without token_type or access_token.
var errMissingToken = errors.New("token response missing token_type or access_token")

// UpstreamError reports a failed call to a provider endpoint.
// StatusCode is 0 when the failure happened before a response was read.
type UpstreamError struct {
	Provider   ID
	Stage      Stage
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
