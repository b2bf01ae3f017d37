package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/royalton/portal"
	"github.com/royalton/portal/internal/auth"
	"github.com/royalton/portal/internal/jobs"
	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/internal/store"
	"github.com/royalton/portal/internal/views"
	"github.com/royalton/portal/pkg/cache"
	"github.com/royalton/portal/pkg/job"
	"github.com/royalton/portal/pkg/sanitizer"
	"github.com/royalton/portal/pkg/toast"
	"github.com/royalton/portal/pkg/validator"
)

// TrackingTTL is how long a lookup stays cached.
const TrackingTTL = 30 * time.Second

// Lookup is a shipment with its scans, as cached by tracking number.
type Lookup struct {
	Shipment shipping.Shipment        `json:"shipment"`
	Events   []shipping.TrackingEvent `json:"events"`
}

func (s *Site) shippingRoutes(r portal.Router) {
	r.POST("/quote", s.quote)
	r.POST("/ship", s.ship, auth.RequireAuth())
	r.POST("/support", s.support)
}

func (s *Site) track(c portal.Context) error {
	number := strings.ToUpper(sanitizer.Text(c.Query("number")))
	t := views.Tracking{Number: number}
	if number != "" {
		l, err := s.lookup(c, number)
		switch {
		case err == nil:
			t.Shipment, t.Events = &l.Shipment, l.Events
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		if u, ok := auth.CurrentUser(c); ok {
			s.Auth.Record(c, u.ID, auth.EventTrack, map[string]any{
				"trackingNumber": number,
				"found":          t.Shipment != nil,
			})
		}
	}
	return page(c, http.StatusOK, "Track", views.Track(t))
}

// lookup reads through the tracking cache. Misses are not cached so a
// freshly booked shipment is visible on the next try.
func (s *Site) lookup(ctx context.Context, number string) (Lookup, error) {
	load := func(ctx context.Context) (Lookup, time.Duration, error) {
		sh, err := s.Store.ShipmentByTrackingNumber(ctx, number)
		if err != nil {
			return Lookup{}, 0, err
		}
		events, err := s.Store.TrackingEvents(ctx, sh.ID)
		if err != nil {
			return Lookup{}, 0, err
		}
		return Lookup{Shipment: sh, Events: events}, TrackingTTL, nil
	}
	if s.Tracking == nil {
		l, _, err := load(ctx)
		return l, err
	}
	return cache.GetOrSet(ctx, s.Tracking, "track:"+number, load)
}

// forget drops a cached lookup after the shipment changed.
func (s *Site) forget(ctx context.Context, number string) {
	if s.Tracking == nil {
		return
	}
	if err := s.Tracking.Delete(ctx, "track:"+number); err != nil {
		s.Logger.WarnContext(ctx, "tracking cache not cleared", slog.String("tracking_number", number), slog.Any("error", err))
	}
}

func (s *Site) quoteForm(c portal.Context) error {
	values := url.Values{"service_type": {c.Query("service")}}
	return page(c, http.StatusOK, "Get a Quote", views.Quote(s.Catalog.Services, views.Form{Values: values}, nil))
}

func (s *Site) quote(c portal.Context) error {
	req := shipping.QuoteRequest{
		ServiceType:   c.Form("service_type"),
		Origin:        shipping.Address{City: text(c, "origin_city"), Country: text(c, "origin_country")},
		Destination:   shipping.Address{City: text(c, "destination_city"), Country: text(c, "destination_country")},
		Weight:        number(c, "weight"),
		DeclaredValue: number(c, "declared_value"),
	}
	if err := req.Validate(); err != nil {
		return page(c, http.StatusUnprocessableEntity, "Get a Quote",
			views.Quote(s.Catalog.Services, views.NewForm(posted(c), err), nil))
	}

	var userID string
	if u, ok := auth.CurrentUser(c); ok {
		userID = u.ID
	}
	q := s.Catalog.Quote(req, userID, s.Now())
	if err := s.Store.AddQuote(c, &q); err != nil {
		return err
	}
	return page(c, http.StatusOK, "Get a Quote",
		views.Quote(s.Catalog.Services, views.Form{Values: posted(c)}, &q))
}

func (s *Site) shipForm(c portal.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	addresses, err := s.Store.SavedAddresses(c, u.ID)
	if err != nil {
		return err
	}

	values := url.Values{"pickup_date": {s.Now().Format(time.DateOnly)}}
	if from, ok := pickOrigin(addresses, c.Query("origin")); ok {
		a := from.Address()
		values.Set("origin_address", a.Address)
		values.Set("origin_city", a.City)
		values.Set("origin_country", a.Country)
	}
	return page(c, http.StatusOK, "Ship", views.Ship(s.Catalog.Services, views.Form{Values: values}, addresses))
}

// pickOrigin returns the requested saved address, or the default one when
// none was asked for.
func pickOrigin(list []shipping.SavedAddress, id string) (shipping.SavedAddress, bool) {
	for _, a := range list {
		if (id != "" && a.ID == id) || (id == "" && a.IsDefault) {
			return a, true
		}
	}
	return shipping.SavedAddress{}, false
}

func (s *Site) ship(c portal.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	now := s.Now()
	d := shipping.Draft{
		ServiceType: c.Form("service_type"),
		Origin: shipping.Address{
			Address: text(c, "origin_address"),
			City:    text(c, "origin_city"),
			Country: text(c, "origin_country"),
		},
		Destination: shipping.Address{
			Address: text(c, "destination_address"),
			City:    text(c, "destination_city"),
			Country: text(c, "destination_country"),
		},
		Recipient: shipping.Recipient{
			Name:  text(c, "recipient_name"),
			Email: strings.ToLower(text(c, "recipient_email")),
			Phone: text(c, "recipient_phone"),
		},
		PickupDate:    date(c, "pickup_date"),
		Weight:        number(c, "weight"),
		DeclaredValue: number(c, "declared_value"),
		Length:        number(c, "length"),
		Width:         number(c, "width"),
		Height:        number(c, "height"),
		Notes:         sanitizer.Multiline(c.Form("notes")),
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := d.Validate(today); err != nil {
		addresses, aerr := s.Store.SavedAddresses(c, u.ID)
		if aerr != nil {
			return aerr
		}
		return page(c, http.StatusUnprocessableEntity, "Ship",
			views.Ship(s.Catalog.Services, views.NewForm(posted(c), err), addresses))
	}

	sh, err := s.book(c, d, u.ID, now)
	if err != nil {
		return err
	}
	err = s.Store.AddTrackingEvent(c, &shipping.TrackingEvent{
		ShipmentID:  sh.ID,
		Status:      shipping.StatusPending,
		Location:    sh.Origin.Short(),
		Description: "Shipment created",
		Timestamp:   now,
	})
	if err != nil {
		c.LogWarn("initial tracking event not saved", slog.String("shipment_id", sh.ID), slog.Any("error", err))
	}
	s.Auth.Record(c, u.ID, auth.EventCreateShipment, map[string]any{
		"shipmentId":     sh.ID,
		"trackingNumber": sh.TrackingNumber,
	})

	err = c.Enqueue(jobs.ShipmentCreatedTask, jobs.ShipmentCreated{
		ShipmentID:     sh.ID,
		UserID:         u.ID,
		TrackingNumber: sh.TrackingNumber,
	})
	if err != nil && !errors.Is(err, job.ErrNotConfigured) {
		c.LogError("shipment confirmation not queued", slog.String("shipment_id", sh.ID), slog.Any("error", err))
	}

	notify(c, "Shipment created successfully!", toast.Success)
	return c.Navigate("/dashboard")
}

// bookAttempts bounds retries on tracking number collisions.
const bookAttempts = 3

func (s *Site) book(ctx context.Context, d shipping.Draft, userID string, now time.Time) (shipping.Shipment, error) {
	var err error
	for range bookAttempts {
		sh := d.Book(userID, now)
		if err = s.Store.CreateShipment(ctx, &sh); !errors.Is(err, store.ErrDuplicate) {
			return sh, err
		}
	}
	return shipping.Shipment{}, err
}

func (s *Site) supportForm(c portal.Context) error {
	values := url.Values{"tracking_number": {c.Query("number")}}
	if u, ok := auth.CurrentUser(c); ok {
		values.Set("name", u.DisplayName)
		values.Set("email", u.Email)
	}
	return page(c, http.StatusOK, "Support", views.Support(views.Form{Values: values}, false))
}

func (s *Site) support(c portal.Context) error {
	t := shipping.SupportTicket{
		Name:           text(c, "name"),
		Email:          strings.ToLower(text(c, "email")),
		Subject:        text(c, "subject"),
		TrackingNumber: strings.ToUpper(text(c, "tracking_number")),
		Message:        sanitizer.Multiline(c.Form("message")),
	}
	err := validator.Apply(
		validator.RequiredString("name", t.Name),
		validator.RequiredString("email", t.Email),
		validator.Email("email", t.Email),
		validator.RequiredString("subject", t.Subject),
		validator.MaxLenString("subject", t.Subject, 200),
		validator.RequiredString("message", t.Message),
		validator.MaxLenString("message", t.Message, 5000),
	)
	if err != nil {
		return page(c, http.StatusUnprocessableEntity, "Support", views.Support(views.NewForm(posted(c), err), false))
	}
	if u, ok := auth.CurrentUser(c); ok {
		t.UserID = u.ID
	}
	if err := s.Store.AddSupportTicket(c, &t); err != nil {
		return err
	}
	notify(c, "Thanks! Our team will reply within one business day.", toast.Success)
	return page(c, http.StatusOK, "Support", views.Support(views.Form{}, true))
}
