// Package store is the portal's single data collaborator: accounts,
// shipments, tracking, quotes, notifications and the admin records.
//
// Postgres is the production implementation. Memory backs tests and the
// in-memory demo mode of the serve command.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/royalton/portal/internal/shipping"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate")
)

// ShipmentUpdate carries the admin-editable fields. Nil fields are left
// unchanged.
type ShipmentUpdate struct {
	Status            *shipping.Status
	EstimatedDelivery *time.Time
	ActualDelivery    *time.Time
}

// Store is the data access surface used by handlers, auth and jobs.
type Store interface {
	// Shipments
	CreateShipment(ctx context.Context, s *shipping.Shipment) error
	ShipmentByID(ctx context.Context, id string) (shipping.Shipment, error)
	ShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (shipping.Shipment, error)
	// UserShipments lists a customer's shipments, newest first.
	UserShipments(ctx context.Context, userID string) ([]shipping.Shipment, error)
	ListShipments(ctx context.Context) ([]shipping.Shipment, error)
	UpdateShipment(ctx context.Context, id string, u ShipmentUpdate) (shipping.Shipment, error)
	DeleteShipment(ctx context.Context, id string) error

	// Tracking, newest event first
	TrackingEvents(ctx context.Context, shipmentID string) ([]shipping.TrackingEvent, error)
	AddTrackingEvent(ctx context.Context, e *shipping.TrackingEvent) error

	// Quotes
	AddQuote(ctx context.Context, q *shipping.Quote) error
	UserQuotes(ctx context.Context, userID string) ([]shipping.Quote, error)
	// ExpireQuotes marks quoted rows past their validity as expired.
	ExpireQuotes(ctx context.Context, now time.Time) (int64, error)

	// Notifications
	UserNotifications(ctx context.Context, userID string, limit int) ([]shipping.Notification, error)
	AddNotification(ctx context.Context, n *shipping.Notification) error
	MarkNotificationRead(ctx context.Context, userID, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)

	// Locations
	ActiveLocations(ctx context.Context) ([]shipping.Location, error)

	// Saved addresses. Saving a default clears the user's other defaults.
	SavedAddresses(ctx context.Context, userID string) ([]shipping.SavedAddress, error)
	AddSavedAddress(ctx context.Context, a *shipping.SavedAddress) error
	UpdateSavedAddress(ctx context.Context, a shipping.SavedAddress) error
	DeleteSavedAddress(ctx context.Context, userID, id string) error

	// Users
	CreateUser(ctx context.Context, u *shipping.User) error
	UserByID(ctx context.Context, id string) (shipping.User, error)
	UserByEmail(ctx context.Context, email string) (shipping.User, error)
	UserByGoogleID(ctx context.Context, googleID string) (shipping.User, error)
	LinkGoogle(ctx context.Context, userID, googleID string) error
	ListUsers(ctx context.Context) ([]shipping.User, error)
	SetRole(ctx context.Context, userID string, role shipping.Role) error
	SetDisabled(ctx context.Context, userID string, disabled bool) error
	DeleteUser(ctx context.Context, userID string) error
	AppendHistory(ctx context.Context, userID string, e shipping.HistoryEntry) error
	UserHistory(ctx context.Context, userID string) ([]shipping.HistoryEntry, error)

	// Back office
	ListPayments(ctx context.Context) ([]shipping.Payment, error)
	LogAdminAction(ctx context.Context, l *shipping.AdminLog) error
	AdminLogs(ctx context.Context, limit int) ([]shipping.AdminLog, error)
	AddSupportTicket(ctx context.Context, t *shipping.SupportTicket) error
}
