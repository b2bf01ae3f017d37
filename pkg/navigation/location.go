package navigation

import (
	"net/url"
	"strings"
)

// Location is a pathname plus its raw query string.
type Location struct {
	Path     string
	RawQuery string
}

// ParseLocation splits a navigation target into pathname and query.
// A fragment is dropped. The target is not validated.
func ParseLocation(target string) Location {
	if i := strings.IndexByte(target, '#'); i >= 0 {
		target = target[:i]
	}
	path, query, _ := strings.Cut(target, "?")
	return Location{Path: path, RawQuery: query}
}

// String returns the location as a navigation target.
func (l Location) String() string {
	if l.RawQuery == "" {
		return l.Path
	}
	return l.Path + "?" + l.RawQuery
}

// Query parses the raw query string. Malformed pairs are skipped.
func (l Location) Query() url.Values {
	v, _ := url.ParseQuery(l.RawQuery)
	return v
}
