// Package oauth implements "Sign in with Google" with PKCE.
//
// The caller stores State and Verifier from Begin (the portal uses a signed
// cookie) and passes them back to Complete on the callback request.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	ErrNotConfigured    = errors.New("oauth: provider not configured")
	ErrStateMismatch    = errors.New("oauth: state mismatch")
	ErrExchangeFailed   = errors.New("oauth: code exchange failed")
	ErrFetchFailed      = errors.New("oauth: failed to fetch user info")
	ErrEmailNotVerified = errors.New("oauth: email not verified")
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Config is read from the environment. Google sign-in is offered only when
// ClientID is set.
type Config struct {
	ClientID     string `env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	RedirectURL  string `env:"GOOGLE_OAUTH_REDIRECT_URL" envDefault:"http://localhost:8080/auth/google/callback"`
}

func (c Config) Enabled() bool { return c.ClientID != "" && c.ClientSecret != "" }

// Identity is the verified Google account.
type Identity struct {
	Subject string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Flow is the per-attempt data kept between Begin and Complete.
type Flow struct {
	State    string
	Verifier string
}

type Option func(*Google)

// WithHTTPClient routes token and userinfo calls through client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Google) { g.client = client }
}

// WithEndpoints overrides the Google endpoints, for tests.
func WithEndpoints(endpoint oauth2.Endpoint, userInfoURL string) Option {
	return func(g *Google) {
		g.conf.Endpoint = endpoint
		g.userInfoURL = userInfoURL
	}
}

type Google struct {
	conf        *oauth2.Config
	client      *http.Client
	userInfoURL string
}

func NewGoogle(cfg Config, opts ...Option) (*Google, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	g := &Google{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Begin returns the consent URL and the flow to remember until the callback.
func (g *Google) Begin() (string, Flow) {
	f := Flow{State: oauth2.GenerateVerifier(), Verifier: oauth2.GenerateVerifier()}
	url := g.conf.AuthCodeURL(f.State, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(f.Verifier))
	return url, f
}

// Complete checks state, exchanges code and loads the verified identity.
func (g *Google) Complete(ctx context.Context, f Flow, state, code string) (*Identity, error) {
	if f.State == "" || state != f.State {
		return nil, ErrStateMismatch
	}
	if g.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)
	}

	tok, err := g.conf.Exchange(ctx, code, oauth2.VerifierOption(f.Verifier))
	if err != nil {
		return nil, errors.Join(ErrExchangeFailed, err)
	}

	resp, err := g.conf.Client(ctx, tok).Get(g.userInfoURL)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	var body struct {
		Identity
		VerifiedEmail bool `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	if !body.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}
	return &body.Identity, nil
}
