package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/royalton/portal"
	"github.com/royalton/portal/internal/auth"
	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/internal/views"
	"github.com/royalton/portal/pkg/oauth"
	"github.com/royalton/portal/pkg/session"
	"github.com/royalton/portal/pkg/toast"
	"github.com/royalton/portal/pkg/validator"
)

// Session keys for an OAuth attempt in flight.
const (
	oauthState    = "oauth_state"
	oauthVerifier = "oauth_verifier"
	oauthNext     = "oauth_next"
)

func (s *Site) accountRoutes(r portal.Router) {
	r.POST("/signin", s.signIn)
	r.POST("/signup", s.signUp)
	r.POST("/signout", s.signOut)
	r.GET("/auth/google", s.googleBegin)
	r.GET("/auth/google/callback", s.googleCallback)
}

func (s *Site) signInForm(c portal.Context) error {
	next := auth.SafeNext(c.Query("next"), "")
	if u, ok := auth.CurrentUser(c); ok {
		return c.Redirect(auth.SafeNext(next, auth.Landing(*u)))
	}
	return s.renderSignIn(c, http.StatusOK, views.Form{}, views.Form{}, next)
}

func (s *Site) renderSignIn(c portal.Context, code int, signIn, signUp views.Form, next string) error {
	return page(c, code, "Sign in", views.SignIn(signIn, signUp, next, s.Google != nil))
}

// formError is a validation error not tied to one field.
func formError(msg string) validator.ValidationErrors {
	return validator.ValidationErrors{{Field: "form", Key: "auth.failed", Message: msg}}
}

func (s *Site) signIn(c portal.Context) error {
	next := auth.SafeNext(c.Form("next"), "")
	u, err := s.Auth.SignIn(c, c.Form("email"), c.Form("password"))
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			msg = "Invalid email or password."
		case errors.Is(err, auth.ErrDisabled):
			msg = "This account has been disabled. Contact support for help."
		default:
			return err
		}
		f := views.Form{Values: without(posted(c), "password"), Errors: formError(msg)}
		return s.renderSignIn(c, http.StatusUnprocessableEntity, f, views.Form{}, next)
	}
	return s.startSession(c, u, next, "Welcome back!")
}

func (s *Site) signUp(c portal.Context) error {
	next := auth.SafeNext(c.Form("next"), "")
	u, err := s.Auth.SignUp(c, auth.SignUpInput{
		Email:       strings.ToLower(c.Form("email")),
		Password:    c.Form("password"),
		DisplayName: text(c, "display_name"),
	})
	if err != nil {
		f := views.Form{Values: without(posted(c), "password")}
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			f.Errors = validator.ValidationErrors{{Field: "email", Key: "auth.email_taken", Message: "is already registered"}}
		case validator.IsValidationError(err):
			f.Errors = validator.ExtractValidationErrors(err)
		default:
			return err
		}
		return s.renderSignIn(c, http.StatusUnprocessableEntity, views.Form{}, f, next)
	}
	return s.startSession(c, u, next, "Account created. Welcome aboard!")
}

// startSession authenticates the session and sends the user on. The
// session id rotates on sign-in, so the toast is published afterwards.
func (s *Site) startSession(c portal.Context, u shipping.User, next, greeting string) error {
	if err := c.AuthenticateSession(u.ID); err != nil {
		return err
	}
	notify(c, greeting, toast.Success)
	return c.Redirect(auth.SafeNext(next, auth.Landing(u)))
}

func (s *Site) signOut(c portal.Context) error {
	s.Auth.SignOut(c, c.UserID())
	if err := c.DestroySession(); err != nil {
		return err
	}
	return c.Redirect("/")
}

// oauthSession returns the visitor's session, creating one for anonymous
// visitors so the OAuth state survives the round trip to Google.
func oauthSession(c portal.Context) (*session.Session, error) {
	sess, err := c.Session()
	if err != nil || sess != nil {
		return sess, err
	}
	if err := c.InitSession(); err != nil {
		return nil, err
	}
	return c.Session()
}

func (s *Site) googleBegin(c portal.Context) error {
	if s.Google == nil {
		return portal.ErrNotFound("Google sign-in is not enabled")
	}
	sess, err := oauthSession(c)
	if err != nil {
		return err
	}
	target, flow := s.Google.Begin()
	sess.Set(oauthState, flow.State)
	sess.Set(oauthVerifier, flow.Verifier)
	sess.Set(oauthNext, auth.SafeNext(c.Query("next"), ""))
	return c.Redirect(target)
}

func (s *Site) googleCallback(c portal.Context) error {
	if s.Google == nil {
		return portal.ErrNotFound("Google sign-in is not enabled")
	}
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if sess == nil {
		return portal.ErrBadRequest("Sign-in expired. Please try again.")
	}
	state, _ := sess.Pop(oauthState)
	verifier, _ := sess.Pop(oauthVerifier)
	next, _ := sess.Pop(oauthNext)

	if msg := c.Query("error"); msg != "" {
		c.LogInfo("google sign-in declined", slog.String("reason", msg))
		notify(c, "Google sign-in was cancelled.", toast.Warning)
		return c.Redirect(auth.SignInPath)
	}

	id, err := s.Google.Complete(c, oauth.Flow{State: state, Verifier: verifier}, c.Query("state"), c.Query("code"))
	if err != nil {
		c.LogWarn("google sign-in failed", slog.Any("error", err))
		notify(c, "Google sign-in failed. Please try again.", toast.Error)
		return c.Redirect(auth.SignInPath + "?next=" + url.QueryEscape(next))
	}
	u, err := s.Auth.SignInGoogle(c, id)
	if errors.Is(err, auth.ErrDisabled) {
		notify(c, "This account has been disabled. Contact support for help.", toast.Error)
		return c.Redirect(auth.SignInPath)
	}
	if err != nil {
		return err
	}
	return s.startSession(c, u, next, "Welcome, "+u.Name()+"!")
}
