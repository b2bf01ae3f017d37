package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/royalton/portal/pkg/oauth"
)

func fakeGoogle(t *testing.T, verified bool) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "the-code", r.Form.Get("code"))
		require.NotEmpty(t, r.Form.Get("code_verifier"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "g-1", "email": "ada@example.com", "name": "Ada", "verified_email": verified,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newGoogle(t *testing.T, srv *httptest.Server) *oauth.Google {
	t.Helper()

	g, err := oauth.NewGoogle(
		oauth.Config{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"},
		oauth.WithHTTPClient(srv.Client()),
		oauth.WithEndpoints(oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}, srv.URL+"/userinfo"),
	)
	require.NoError(t, err)
	return g
}

func TestNewGoogle(t *testing.T) {
	t.Parallel()

	_, err := oauth.NewGoogle(oauth.Config{ClientID: "only-id"})
	require.ErrorIs(t, err, oauth.ErrNotConfigured)
}

func TestGoogle_Begin(t *testing.T) {
	t.Parallel()

	g := newGoogle(t, fakeGoogle(t, true))
	raw, flow := g.Begin()
	require.NotEmpty(t, flow.State)
	require.NotEmpty(t, flow.Verifier)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, flow.State, q.Get("state"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))
	require.NotEqual(t, flow.Verifier, q.Get("code_challenge"))
}

func TestGoogle_Complete(t *testing.T) {
	t.Parallel()

	t.Run("returns the verified identity", func(t *testing.T) {
		t.Parallel()

		g := newGoogle(t, fakeGoogle(t, true))
		_, flow := g.Begin()

		id, err := g.Complete(context.Background(), flow, flow.State, "the-code")
		require.NoError(t, err)
		require.Equal(t, &oauth.Identity{Subject: "g-1", Email: "ada@example.com", Name: "Ada"}, id)
	})

	t.Run("rejects a forged state", func(t *testing.T) {
		t.Parallel()

		g := newGoogle(t, fakeGoogle(t, true))
		_, flow := g.Begin()
		_, err := g.Complete(context.Background(), flow, "other", "the-code")
		require.ErrorIs(t, err, oauth.ErrStateMismatch)
	})

	t.Run("rejects unverified email", func(t *testing.T) {
		t.Parallel()

		g := newGoogle(t, fakeGoogle(t, false))
		_, flow := g.Begin()
		_, err := g.Complete(context.Background(), flow, flow.State, "the-code")
		require.ErrorIs(t, err, oauth.ErrEmailNotVerified)
	})
}
