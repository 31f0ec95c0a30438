// provider.go
//
// FakeProvider: an in-process OAuth provider (authorize, token, userinfo endpoints)
// for tests across packages. Records what the relay sent so tests can assert on
// credential transport and the Authorization header.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// DefaultTokenBody is a complete token response; the relay keeps only token_type and access_token.
const DefaultTokenBody = `{"token_type":"Bearer","access_token":"fake-access-token","expires_in":604800,"refresh_token":"fake-refresh","scope":"identify"}`

// TokenRequest is one request received by the token endpoint.
type TokenRequest struct {
	Form        url.Values
	ContentType string
	BasicUser   string
	BasicPass   string
	HasBasic    bool
}

// FakeProvider serves /authorize, /token, and /userinfo from an httptest.Server.
//
// Zero-value response fields mean: token 200 + DefaultTokenBody, userinfo 200 + "{}".
// Set fields before the first request is made.
type FakeProvider struct {
	Server *httptest.Server

	TokenStatus int
	TokenBody   string
	UserStatus  int
	UserBody    string

	mu            sync.Mutex
	tokenRequests []TokenRequest
	userInfoAuth  []string
}

// NewFakeProvider starts a FakeProvider; the server is closed when the test ends.
func NewFakeProvider(t testing.TB) *FakeProvider {
	t.Helper()
	f := &FakeProvider{}
	mux := http.NewServeMux()
	mux.HandleFunc("/authorize", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/token", f.handleToken)
	mux.HandleFunc("/userinfo", f.handleUserInfo)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeProvider) AuthorizeURL() string { return f.Server.URL + "/authorize" }
func (f *FakeProvider) TokenURL() string     { return f.Server.URL + "/token" }
func (f *FakeProvider) UserInfoURL() string  { return f.Server.URL + "/userinfo" }

// TokenRequests returns every token request received so far.
func (f *FakeProvider) TokenRequests() []TokenRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]TokenRequest(nil), f.tokenRequests...)
}

// UserInfoAuth returns the Authorization header of every userinfo request.
func (f *FakeProvider) UserInfoAuth() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.userInfoAuth...)
}

func (f *FakeProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	user, pass, hasBasic := r.BasicAuth()

	f.mu.Lock()
	f.tokenRequests = append(f.tokenRequests, TokenRequest{
		Form:        r.PostForm,
		ContentType: r.Header.Get("Content-Type"),
		BasicUser:   user,
		BasicPass:   pass,
		HasBasic:    hasBasic,
	})
	status, body := f.TokenStatus, f.TokenBody
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	if body == "" {
		body = DefaultTokenBody
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func (f *FakeProvider) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.userInfoAuth = append(f.userInfoAuth, r.Header.Get("Authorization"))
	status, body := f.UserStatus, f.UserBody
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	if body == "" {
		body = "{}"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
