package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// A is one attribute; the value is escaped on render.
type A struct{ Key, Value string }

// Flag is a boolean attribute such as required or checked. An empty Flag
// renders nothing.
type Flag string

var voidElements = map[string]bool{
	"area": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "source": true, "track": true, "wbr": true,
}

// E renders an element. Arguments are attributes (A, []A, Flag), children
// (templ.Component, []templ.Component) or text (string, escaped). Nil
// arguments are skipped so optional parts can be passed inline.
func E(tag string, args ...any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<")
		b.WriteString(tag)
		children := make([]any, 0, len(args))
		for _, arg := range args {
			switch v := arg.(type) {
			case A:
				writeAttr(&b, v)
			case []A:
				for _, a := range v {
					writeAttr(&b, a)
				}
			case Flag:
				if v != "" {
					b.WriteString(" ")
					b.WriteString(string(v))
				}
			default:
				children = append(children, v)
			}
		}
		b.WriteString(">")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if voidElements[tag] {
			return nil
		}
		for _, child := range children {
			if err := render(ctx, w, child); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</"+tag+">")
		return err
	})
}

func writeAttr(b *strings.Builder, a A) {
	b.WriteString(" ")
	b.WriteString(a.Key)
	b.WriteString(`="`)
	b.WriteString(templ.EscapeString(a.Value))
	b.WriteString(`"`)
}

func render(ctx context.Context, w io.Writer, child any) error {
	switch v := child.(type) {
	case nil:
		return nil
	case string:
		_, err := io.WriteString(w, templ.EscapeString(v))
		return err
	case templ.Component:
		return v.Render(ctx, w)
	case []templ.Component:
		for _, c := range v {
			if c == nil {
				continue
			}
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("views: unsupported child %T", child)
	}
}

// Group renders children without a wrapping element.
func Group(children ...any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, child := range children {
			if err := render(ctx, w, child); err != nil {
				return err
			}
		}
		return nil
	})
}

// Textf renders formatted, escaped text.
func Textf(format string, args ...any) templ.Component {
	return Group(fmt.Sprintf(format, args...))
}

// If returns c when cond holds and nil otherwise.
func If(cond bool, c templ.Component) templ.Component {
	if cond {
		return c
	}
	return nil
}

// Map renders each item with fn.
func Map[T any](items []T, fn func(T) templ.Component) []templ.Component {
	out := make([]templ.Component, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}

func Class(v string) A { return A{"class", v} }
func ID(v string) A    { return A{"id", v} }
func Name(v string) A  { return A{"name", v} }
func Type(v string) A  { return A{"type", v} }
func Value(v string) A { return A{"value", v} }

// Href builds a sanitized href; unsafe schemes render templ's invalid URL.
func Href(v string) A { return A{"href", string(templ.URL(v))} }

// Hx builds an htmx attribute, e.g. Hx("post", "/quote") is hx-post="/quote".
func Hx(name, v string) A { return A{"hx-" + name, v} }
