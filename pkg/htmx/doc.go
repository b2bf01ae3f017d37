// Package htmx holds the request and response header vocabulary the portal
// uses to drive htmx partial navigation.
//
// A partial navigation is a request carrying HX-Request: true whose response
// replaces the main content region and pushes the URL into browser history.
// Navigate and Redirect pick the htmx form or a plain 303 depending on the
// request, so handlers never branch on it themselves.
package htmx
