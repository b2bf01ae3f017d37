package handlers

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/royalton/portal"
	"github.com/royalton/portal/pkg/sanitizer"
)

// posted returns the submitted form values. Parse errors leave them empty
// and surface as validation failures.
func posted(c portal.Context) url.Values {
	r := c.Request()
	_ = r.ParseForm()
	if len(r.PostForm) > 0 {
		return r.PostForm
	}
	return r.Form
}

// text is a single-line field with markup stripped.
func text(c portal.Context, name string) string {
	return sanitizer.Text(c.Form(name))
}

// number parses a decimal field; blank or malformed input is zero.
func number(c portal.Context, name string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Form(name)), 64)
	if err != nil {
		return 0
	}
	return v
}

// date parses a yyyy-mm-dd field in UTC; blank or malformed input is zero.
func date(c portal.Context, name string) time.Time {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(c.Form(name)))
	if err != nil {
		return time.Time{}
	}
	return t
}

// optionalDate is date for fields where blank means "unset".
func optionalDate(c portal.Context, name string) *time.Time {
	t := date(c, name)
	if t.IsZero() {
		return nil
	}
	return &t
}

// without drops secrets before values are echoed back into a form.
func without(values url.Values, names ...string) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		out[k] = v
	}
	for _, n := range names {
		delete(out, n)
	}
	return out
}
