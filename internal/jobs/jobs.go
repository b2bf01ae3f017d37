// Package jobs holds the portal's background tasks: the booking
// confirmation email, the hourly quote expiry sweep and the asynchronous
// shipment export to object storage.
package jobs

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"time"

	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/internal/store"
	"github.com/royalton/portal/pkg/id"
	"github.com/royalton/portal/pkg/job"
	"github.com/royalton/portal/pkg/mailer"
	"github.com/royalton/portal/pkg/storage"
)

// Task names, as passed to job.Enqueuer.Enqueue.
const (
	ShipmentCreatedTask = "shipment.created"
	ExpireQuotesTask    = "quotes.expire"
	ExportShipmentsTask = "exports.shipments"
)

//go:embed emails/*.md
var emails embed.FS

// Emails returns the mail templates, rooted so names are "shipment_created.md".
func Emails() fs.FS {
	sub, err := fs.Sub(emails, "emails")
	if err != nil {
		panic(err)
	}
	return sub
}

// Deps are the collaborators shared by all tasks. Storage may be nil, in
// which case exports fail with storage.ErrNotConfigured.
type Deps struct {
	Store   store.Store
	Mailer  *mailer.Mailer
	Storage storage.Storage
	Logger  *slog.Logger
	BaseURL string
	Now     func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Options registers every task with a job.Manager.
func Options(d Deps) []job.Option {
	return []job.Option{
		job.WithTask[ShipmentCreated](NewShipmentCreated(d)),
		job.WithTask[ExportRequest](NewExportShipments(d)),
		job.WithScheduledTask(NewExpireQuotes(d)),
	}
}

// ShipmentCreated is the payload enqueued after a booking.
type ShipmentCreated struct {
	ShipmentID     string `json:"shipment_id"`
	UserID         string `json:"user_id"`
	TrackingNumber string `json:"tracking_number"`
}

// ShipmentCreatedHandler notifies the customer in-app and by email. The
// notification is written first so a mail outage does not hide the booking.
type ShipmentCreatedHandler struct{ d Deps }

func NewShipmentCreated(d Deps) *ShipmentCreatedHandler { return &ShipmentCreatedHandler{d: d} }

func (*ShipmentCreatedHandler) Name() string { return ShipmentCreatedTask }

func (h *ShipmentCreatedHandler) Handle(ctx context.Context, p ShipmentCreated) error {
	s, err := h.d.Store.ShipmentByID(ctx, p.ShipmentID)
	if errors.Is(err, store.ErrNotFound) {
		h.d.logger().WarnContext(ctx, "shipment gone before confirmation",
			slog.String("shipment_id", p.ShipmentID))
		return nil
	}
	if err != nil {
		return err
	}

	link := "/track?number=" + url.QueryEscape(s.TrackingNumber)
	err = h.d.Store.AddNotification(ctx, &shipping.Notification{
		UserID:     p.UserID,
		ShipmentID: s.ID,
		Type:       shipping.NotifyShipmentCreated,
		Title:      "Shipment booked",
		Message:    fmt.Sprintf("Shipment %s to %s has been created.", s.TrackingNumber, s.Destination.Short()),
		Link:       link,
	})
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	if h.d.Mailer == nil || s.Recipient.Email == "" {
		return nil
	}
	eta := "to be confirmed"
	if s.EstimatedDelivery != nil {
		eta = s.EstimatedDelivery.Format("Jan 2, 2006")
	}
	return h.d.Mailer.Send(ctx, mailer.Message{
		To:       mailer.Address(s.Recipient.Name, s.Recipient.Email),
		Template: "shipment_created.md",
		Data: map[string]string{
			"Name":              s.Recipient.Name,
			"TrackingNumber":    s.TrackingNumber,
			"Service":           s.ServiceType.Label(),
			"Origin":            s.Origin.Short(),
			"Destination":       s.Destination.Short(),
			"EstimatedDelivery": eta,
			"TrackURL":          h.d.BaseURL + link,
		},
		Tags: map[string]string{"category": ShipmentCreatedTask},
	})
}

// ExpireQuotes marks stale quotes expired every hour.
type ExpireQuotes struct{ d Deps }

func NewExpireQuotes(d Deps) *ExpireQuotes { return &ExpireQuotes{d: d} }

func (*ExpireQuotes) Name() string     { return ExpireQuotesTask }
func (*ExpireQuotes) Schedule() string { return "@hourly" }

func (e *ExpireQuotes) Handle(ctx context.Context) error {
	n, err := e.d.Store.ExpireQuotes(ctx, e.d.now())
	if err != nil {
		return err
	}
	if n > 0 {
		e.d.logger().InfoContext(ctx, "quotes expired", slog.Int64("count", n))
	}
	return nil
}

// ExportRequest is the payload of an asynchronous shipment export.
type ExportRequest struct {
	UserID string `json:"user_id"`
	Search string `json:"search,omitempty"`
	Status string `json:"status,omitempty"`
}

// ExportURLExpiry bounds the lifetime of the emailed download link.
const ExportURLExpiry = 24 * time.Hour

// ExportShipments writes the filtered shipment list as CSV to object
// storage and notifies the requesting admin with a presigned link.
type ExportShipments struct{ d Deps }

func NewExportShipments(d Deps) *ExportShipments { return &ExportShipments{d: d} }

func (*ExportShipments) Name() string { return ExportShipmentsTask }

func (e *ExportShipments) Handle(ctx context.Context, p ExportRequest) error {
	if e.d.Storage == nil {
		return storage.ErrNotConfigured
	}
	all, err := e.d.Store.ListShipments(ctx)
	if err != nil {
		return err
	}
	list := shipping.Filter{Search: p.Search, Status: p.Status}.Apply(all)

	var buf bytes.Buffer
	if err := shipping.WriteCSV(&buf, list); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	now := e.d.now()
	key := "exports/shipments-" + id.ULIDAt(now) + ".csv"
	body := bytes.NewReader(buf.Bytes())
	if _, err := e.d.Storage.Put(ctx, key, body, int64(buf.Len()), "text/csv"); err != nil {
		return err
	}
	link, err := e.d.Storage.DownloadURL(ctx, key, "shipments-"+now.Format("2006-01-02")+".csv", ExportURLExpiry)
	if err != nil {
		return err
	}

	e.d.logger().InfoContext(ctx, "shipments exported",
		slog.String("key", key),
		slog.Int("rows", len(list)),
	)
	expires := now.Add(ExportURLExpiry).Format("Jan 2 15:04 MST")
	err = e.d.Store.AddNotification(ctx, &shipping.Notification{
		UserID:  p.UserID,
		Type:    shipping.NotifyExportReady,
		Title:   "Export ready",
		Message: fmt.Sprintf("%d shipments exported. The link expires %s.", len(list), expires),
		Link:    link,
	})
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	if e.d.Mailer == nil {
		return nil
	}
	u, err := e.d.Store.UserByID(ctx, p.UserID)
	if err != nil {
		e.d.logger().WarnContext(ctx, "export requester not found", slog.String("user_id", p.UserID))
		return nil
	}
	return e.d.Mailer.Send(ctx, mailer.Message{
		To:       mailer.Address(u.Name(), u.Email),
		Template: "export_ready.md",
		Data: map[string]any{
			"Name":      u.Name(),
			"Rows":      len(list),
			"URL":       link,
			"ExpiresAt": expires,
		},
		Tags: map[string]string{"category": ExportShipmentsTask},
	})
}
