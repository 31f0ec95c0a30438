// exchange_test.go -- unit tests for Client.Exchange against a fake token endpoint.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/MGallo-Code/hermes/internal/testutil"
)

func TestClient_Exchange(t *testing.T) {
	t.Run("body credentials for discord and google", func(t *testing.T) {
		for _, id := range []ID{Discord, Google} {
			fake := testutil.NewFakeProvider(t)
			p := newFakeBackedProvider(t, id, fake)

			tok, err := NewClient(nil).Exchange(context.Background(), p, "the-code")
			if err != nil {
				t.Fatalf("%s: Exchange: %v", id, err)
			}
			if tok.Type != "Bearer" || tok.AccessToken != "fake-access-token" {
				t.Errorf("%s: token: got %+v", id, tok)
			}

			reqs := fake.TokenRequests()
			if len(reqs) != 1 {
				t.Fatalf("%s: expected 1 token request, got %d", id, len(reqs))
			}
			req := reqs[0]
			if req.HasBasic {
				t.Errorf("%s: unexpected basic auth header", id)
			}
			want := map[string]string{
				"client_id":     "client-abc",
				"client_secret": "secret-xyz",
				"code":          "the-code",
				"grant_type":    "authorization_code",
				"redirect_uri":  "https://relay.test/cb",
			}
			for k, v := range want {
				if got := req.Form.Get(k); got != v {
					t.Errorf("%s: form %s: expected %q, got %q", id, k, v, got)
				}
			}
			if !strings.HasPrefix(req.ContentType, "application/x-www-form-urlencoded") {
				t.Errorf("%s: content type: got %q", id, req.ContentType)
			}
		}
	})

	t.Run("basic header credentials are query-escaped before encoding", func(t *testing.T) {
		fake := testutil.NewFakeProvider(t)
		p, err := NewProvider(Spotify, Credentials{
			ClientID:     "id with space",
			ClientSecret: "s&cret",
			RedirectURI:  "https://relay.test/cb",
		}, Endpoints{TokenURL: fake.TokenURL(), UserInfoURL: fake.UserInfoURL()})
		if err != nil {
			t.Fatalf("NewProvider: %v", err)
		}

		if _, err := NewClient(nil).Exchange(context.Background(), p, "the-code"); err != nil {
			t.Fatalf("Exchange: %v", err)
		}

		req := fake.TokenRequests()[0]
		if req.BasicUser != "id+with+space" || req.BasicPass != "s%26cret" {
			t.Errorf("basic auth: got %q:%q", req.BasicUser, req.BasicPass)
		}
	})

	t.Run("basic header credentials for spotify", func(t *testing.T) {
		fake := testutil.NewFakeProvider(t)
		p := newFakeBackedProvider(t, Spotify, fake)

		if _, err := NewClient(nil).Exchange(context.Background(), p, "the-code"); err != nil {
			t.Fatalf("Exchange: %v", err)
		}

		req := fake.TokenRequests()[0]
		if !req.HasBasic {
			t.Fatal("expected basic auth header")
		}
		if req.BasicUser != "client-abc" || req.BasicPass != "secret-xyz" {
			t.Errorf("basic auth: got %q:%q", req.BasicUser, req.BasicPass)
		}
		if req.Form.Has("client_id") || req.Form.Has("client_secret") {
			t.Errorf("credentials leaked into body: %v", req.Form)
		}
		if req.Form.Get("code") != "the-code" || req.Form.Get("grant_type") != "authorization_code" {
			t.Errorf("grant fields: got %v", req.Form)
		}
	})

	t.Run("empty code is forwarded verbatim", func(t *testing.T) {
		fake := testutil.NewFakeProvider(t)
		p := newFakeBackedProvider(t, Discord, fake)

		if _, err := NewClient(nil).Exchange(context.Background(), p, ""); err != nil {
			t.Fatalf("Exchange: %v", err)
		}
		if got := fake.TokenRequests()[0].Form; !got.Has("code") || got.Get("code") != "" {
			t.Errorf("code: expected present and empty, got %v", got)
		}
	})

	t.Run("401 from token endpoint is an upstream error with status", func(t *testing.T) {
		fake := testutil.NewFakeProvider(t)
		fake.TokenStatus = http.StatusUnauthorized
		fake.TokenBody = `{"error":"invalid_client"}`
		p := newFakeBackedProvider(t, Google, fake)

		_, err := NewClient(nil).Exchange(context.Background(), p, "code")
		var ue *UpstreamError
		if !errors.As(err, &ue) {
			t.Fatalf("expected *UpstreamError, got %T (%v)", err, err)
		}
		if ue.Stage != StageTokenExchange {
			t.Errorf("Stage: expected %q, got %q", StageTokenExchange, ue.Stage)
		}
		if ue.StatusCode != http.StatusUnauthorized {
			t.Errorf("StatusCode: expected 401, got %d", ue.StatusCode)
		}
		if ue.Provider != Google {
			t.Errorf("Provider: expected google, got %q", ue.Provider)
		}
		if len(fake.TokenRequests()) != 1 {
			t.Errorf("expected a single attempt, got %d", len(fake.TokenRequests()))
		}
	})

	t.Run("missing token_type is an upstream contract violation", func(t *testing.T) {
		fake := testutil.NewFakeProvider(t)
		fake.TokenBody = `{"access_token":"t1"}`
		p := newFakeBackedProvider(t, Discord, fake)

		_, err := NewClient(nil).Exchange(context.Background(), p, "code")
		if !errors.Is(err, errMissingToken) {
			t.Errorf("expected errMissingToken, got %v", err)
		}
	})

	t.Run("missing access_token is an upstream error", func(t *testing.T) {
		fake := testutil.NewFakeProvider(t)
		fake.TokenBody = `{"token_type":"Bearer"}`
		p := newFakeBackedProvider(t, Discord, fake)

		_, err := NewClient(nil).Exchange(context.Background(), p, "code")
		var ue *UpstreamError
		if !errors.As(err, &ue) || ue.Stage != StageTokenExchange {
			t.Errorf("expected token exchange UpstreamError, got %v", err)
		}
	})

	t.Run("transport failure is an upstream error", func(t *testing.T) {
		fake := testutil.NewFakeProvider(t)
		p := newFakeBackedProvider(t, Discord, fake)
		fake.Server.Close()

		_, err := NewClient(nil).Exchange(context.Background(), p, "code")
		var ue *UpstreamError
		if !errors.As(err, &ue) {
			t.Fatalf("expected *UpstreamError, got %v", err)
		}
		if ue.StatusCode != 0 {
			t.Errorf("StatusCode: expected 0 for transport failure, got %d", ue.StatusCode)
		}
	})
}

func TestToken_LogValue(t *testing.T) {
	tok := Token{Type: "Bearer", AccessToken: "super-secret"}
	if got := fmt.Sprint(tok.LogValue()); strings.Contains(got, "super-secret") {
		t.Errorf("access token leaked into log value: %s", got)
	}
	if tok.LogValue().Kind() != slog.KindGroup {
		t.Errorf("expected group value, got %v", tok.LogValue().Kind())
	}
}
