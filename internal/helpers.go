package internal

import "strconv"

// ContextValue returns the value stored under key, or the zero T.
func ContextValue[T any](c Context, key any) T {
	v, _ := c.Get(key).(T)
	return v
}

// QueryInt parses a query parameter as an int, returning def when it is
// missing or malformed.
func QueryInt(c Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return n
}

// FormBool reports whether a checkbox-style form field is set.
func FormBool(c Context, name string) bool {
	switch c.Form(name) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
