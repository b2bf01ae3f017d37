// Package sanitizer cleans user-entered text before it is stored or
// rendered: shipment notes, support messages and recipient details.
package sanitizer

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	rich   = richPolicy()
)

func richPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowElements("p", "br", "strong", "em", "ul", "ol", "li", "code")
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Text strips every tag, collapses runs of whitespace and trims the result.
// Entities produced by the policy are decoded so templates escape once.
func Text(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(s))), " ")
}

// Multiline is Text that keeps line breaks, for notes and support messages.
func Multiline(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		out = append(out, Text(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// HTML keeps basic formatting and links. Used for admin-authored content
// rendered through goldmark.
func HTML(s string) string {
	return rich.Sanitize(s)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
