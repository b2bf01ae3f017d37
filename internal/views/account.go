package views

import (
	"net/url"

	"github.com/a-h/templ"
)

// SignIn renders the sign-in and sign-up forms side by side. next is the
// page to return to afterwards; google enables the Google button.
func SignIn(signIn, signUp Form, next string, google bool) templ.Component {
	hidden := E("input", Type("hidden"), Name("next"), Value(next))
	return Group(
		E("h1", "Welcome"),
		E("div", Class("grid"),
			E("form", Class("stack card"), ID("signin-form"), A{"method", "post"}, A{"action", "/signin"},
				E("h2", "Sign in"),
				hidden,
				signIn.Field(Field{Name: "email", Label: "Email", Type: "email", Required: true}),
				signIn.Field(Field{Name: "password", Label: "Password", Type: "password", Required: true}),
				If(signIn.Error("form") != "", E("p", Class("field-error"), signIn.Error("form"))),
				E("button", Type("submit"), Class("btn btn-primary"), "Sign in"),
				If(google, E("a", Href("/auth/google?next="+url.QueryEscape(next)), Class("btn btn-link"), "Continue with Google")),
			),
			E("form", Class("stack card"), ID("signup-form"), A{"method", "post"}, A{"action", "/signup"},
				E("h2", "Create an account"),
				hidden,
				signUp.Field(Field{Name: "display_name", Label: "Full name"}),
				signUp.Field(Field{Name: "email", Label: "Email", Type: "email", Required: true}),
				signUp.Field(Field{Name: "password", Label: "Password (6+ characters)", Type: "password", Required: true}),
				E("button", Type("submit"), Class("btn btn-accent"), "Sign up"),
			),
		),
	)
}
