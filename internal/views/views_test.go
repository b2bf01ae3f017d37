package views_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/internal/views"
	"github.com/royalton/portal/pkg/toast"
	"github.com/royalton/portal/pkg/validator"
)

func html(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func TestElementBuilder(t *testing.T) {
	t.Parallel()

	t.Run("escapes text and attributes", func(t *testing.T) {
		t.Parallel()
		got := html(t, views.E("a", views.Href(`/x?a=1&b="2"`), "<b>bold</b>"))
		require.Equal(t, `<a href="/x?a=1&amp;b=&#34;2&#34;">&lt;b&gt;bold&lt;/b&gt;</a>`, got)
	})

	t.Run("href drops script urls", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, `<a href="about:invalid#TemplFailedSanitizationURL">x</a>`, html(t, views.E("a", views.Href("javascript:alert(1)"), "x")))
		require.Equal(t, `<a href="mailto:ops@example.com">x</a>`, html(t, views.E("a", views.Href("mailto:ops@example.com"), "x")))
	})

	t.Run("void elements have no closing tag", func(t *testing.T) {
		t.Parallel()
		got := html(t, views.E("input", views.Name("q"), views.Flag("required")))
		require.Equal(t, `<input name="q" required>`, got)
	})

	t.Run("nil and empty parts are skipped", func(t *testing.T) {
		t.Parallel()
		var optional any
		got := html(t, views.E("p", optional, views.Flag(""), views.If(false, views.E("span", "no")), "yes"))
		require.Equal(t, "<p>yes</p>", got)
	})

	t.Run("map renders every item", func(t *testing.T) {
		t.Parallel()
		items := views.Map([]string{"a", "b"}, func(s string) templ.Component { return views.E("li", s) })
		require.Equal(t, "<ul><li>a</li><li>b</li></ul>", html(t, views.E("ul", items)))
	})

	t.Run("unsupported child fails the render", func(t *testing.T) {
		t.Parallel()
		var b strings.Builder
		err := views.E("p", 42).Render(context.Background(), &b)
		require.Error(t, err)
	})
}

func TestToastRegion(t *testing.T) {
	t.Parallel()

	got := html(t, views.ToastRegion([]toast.Message{
		{ID: "t1", Text: "Saved <ok>", Category: toast.Success},
	}))
	require.Contains(t, got, `id="toasts"`)
	require.Contains(t, got, `hx-swap-oob="true"`)
	require.Contains(t, got, `id="toast-t1"`)
	require.Contains(t, got, "toast-success")
	require.Contains(t, got, `hx-delete="/toasts/t1"`)
	require.Contains(t, got, "Saved &lt;ok&gt;")

	empty := html(t, views.ToastRegion(nil))
	require.Contains(t, empty, `id="toasts"`)
	require.NotContains(t, empty, "toast-close")
}

func TestTrack(t *testing.T) {
	t.Parallel()

	t.Run("no number shows the hint", func(t *testing.T) {
		t.Parallel()
		got := html(t, views.Track(views.Tracking{}))
		require.Contains(t, got, "Enter the tracking number")
		require.NotContains(t, got, views.TrackNotFound)
	})

	t.Run("unknown number", func(t *testing.T) {
		t.Parallel()
		got := html(t, views.Track(views.Tracking{Number: "TXP0"}))
		require.Contains(t, got, views.TrackNotFound)
	})

	t.Run("shipment with scans", func(t *testing.T) {
		t.Parallel()
		sh := &shipping.Shipment{
			TrackingNumber: "TXP9",
			Status:         shipping.StatusInTransit,
			ServiceType:    shipping.ServiceDomestic,
			Origin:         shipping.Address{City: "Leeds", Country: "UK"},
			Destination:    shipping.Address{City: "Hull", Country: "UK"},
		}
		events := []shipping.TrackingEvent{{
			Status:      shipping.StatusInTransit,
			Location:    "Leeds depot",
			Description: "Departed facility",
			Timestamp:   time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC),
		}}
		got := html(t, views.Track(views.Tracking{Number: "TXP9", Shipment: sh, Events: events}))
		require.Contains(t, got, "TXP9")
		require.Contains(t, got, "Hull, UK")
		require.Contains(t, got, "Leeds depot")
		require.Contains(t, got, "Departed facility")
	})
}

func TestFormField(t *testing.T) {
	t.Parallel()

	f := views.NewForm(url.Values{"city": {`"Leeds"`}}, validator.ValidationErrors{
		{Field: "city", Key: "required", Message: "is required"},
	})
	got := html(t, f.Field(views.Field{Name: "city", Label: "City", Required: true}))
	require.Contains(t, got, `class="field invalid"`)
	require.Contains(t, got, `value="&#34;Leeds&#34;"`)
	require.Contains(t, got, "is required")

	clean := html(t, views.Form{}.Field(views.Field{Name: "city", Label: "City"}))
	require.NotContains(t, clean, "field-error")
}

func TestPage(t *testing.T) {
	t.Parallel()

	got := html(t, views.Page("Track", views.E("p", "body")))
	require.True(t, strings.HasPrefix(got, "<!DOCTYPE html>"))
	require.Contains(t, got, "<title>Track | "+views.Brand+"</title>")
	require.Contains(t, got, `name="htmx-config"`)
	require.Contains(t, got, "<p>body</p>")

	partial := html(t, views.Partial("Track", views.E("p", "body")))
	require.NotContains(t, partial, "<!DOCTYPE html>")
	require.Contains(t, partial, "<title>Track | "+views.Brand+"</title>")
}
