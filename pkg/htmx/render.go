package htmx

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// Component matches templ.Component.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Config collects response headers and out-of-band fragments for one render.
type Config struct {
	OOB      []Component
	PushURL  string
	Retarget string
	Reswap   Swap
	Triggers []string
}

// RenderOption adjusts a Config.
type RenderOption func(*Config)

func NewConfig(opts ...RenderOption) *Config {
	c := &Config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ApplyHeaders writes the configured headers. It must run before WriteHeader.
func (c *Config) ApplyHeaders(w http.ResponseWriter) {
	h := w.Header()
	if c.PushURL != "" {
		h.Set(HeaderPushURL, c.PushURL)
	}
	if c.Retarget != "" {
		h.Set(HeaderRetarget, c.Retarget)
	}
	if c.Reswap != "" {
		h.Set(HeaderReswap, string(c.Reswap))
	}
	if len(c.Triggers) > 0 {
		h.Set(HeaderTrigger, strings.Join(c.Triggers, ", "))
	}
}

// WithOOB appends fragments carrying hx-swap-oob after the main component.
func WithOOB(components ...Component) RenderOption {
	return func(c *Config) { c.OOB = append(c.OOB, components...) }
}

// WithPushURL pushes url into browser history.
func WithPushURL(url string) RenderOption {
	return func(c *Config) { c.PushURL = url }
}

func WithRetarget(selector string) RenderOption {
	return func(c *Config) { c.Retarget = selector }
}

func WithReswap(s Swap) RenderOption {
	return func(c *Config) { c.Reswap = s }
}

// WithTrigger fires client-side events after the response is received.
func WithTrigger(events ...string) RenderOption {
	return func(c *Config) { c.Triggers = append(c.Triggers, events...) }
}
