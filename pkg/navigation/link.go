package navigation

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// DefaultLinkTarget is the element replaced by a link's partial response.
const DefaultLinkTarget = "#main"

type linkConfig struct {
	class   string
	target  string
	onClick string
	boost   bool
}

// LinkOption customizes a Link.
type LinkOption func(*linkConfig)

// Class sets the anchor's class attribute.
func Class(class string) LinkOption {
	return func(c *linkConfig) {
		c.class = class
	}
}

// Target overrides the CSS selector of the element to swap.
func Target(selector string) LinkOption {
	return func(c *linkConfig) {
		if selector != "" {
			c.target = selector
		}
	}
}

// OnClick attaches a script run before the navigation happens.
func OnClick(script string) LinkOption {
	return func(c *linkConfig) {
		c.onClick = script
	}
}

// External renders a plain anchor without htmx interception.
func External() LinkOption {
	return func(c *linkConfig) {
		c.boost = false
	}
}

// Link renders an anchor that navigates to the target without a full page
// reload. The anchor keeps a real href, so modified clicks behave as usual.
func Link(to string, label templ.Component, opts ...LinkOption) templ.Component {
	cfg := linkConfig{target: DefaultLinkTarget, boost: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Unsafe schemes such as javascript: become templ's invalid URL marker.
	href := templ.EscapeString(string(templ.URL(to)))

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<a href="`)
		b.WriteString(href)
		b.WriteString(`"`)
		if cfg.boost {
			b.WriteString(` hx-get="`)
			b.WriteString(href)
			b.WriteString(`" hx-target="`)
			b.WriteString(templ.EscapeString(cfg.target))
			b.WriteString(`" hx-push-url="true"`)
		}
		if cfg.class != "" {
			b.WriteString(` class="`)
			b.WriteString(templ.EscapeString(cfg.class))
			b.WriteString(`"`)
		}
		if cfg.onClick != "" {
			b.WriteString(` onclick="`)
			b.WriteString(templ.EscapeString(cfg.onClick))
			b.WriteString(`"`)
		}
		b.WriteString(`>`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if label != nil {
			if err := label.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</a>`)
		return err
	})
}

// Text wraps a plain string as an escaped label.
func Text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}
