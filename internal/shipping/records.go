package shipping

import (
	"time"
)

// TrackingEvent is one scan in a shipment's history.
type TrackingEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	ID          string    `json:"id"`
	ShipmentID  string    `json:"shipmentId"`
	Status      Status    `json:"status"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}

// NotificationType tags what a notification is about.
type NotificationType string

const (
	NotifyShipmentCreated NotificationType = "shipment_created"
	NotifyStatusChanged   NotificationType = "status_changed"
	NotifyDelivered       NotificationType = "delivered"
	NotifyExportReady     NotificationType = "export_ready"
)

type Notification struct {
	CreatedAt  time.Time        `json:"createdAt"`
	ID         string           `json:"id"`
	UserID     string           `json:"userId"`
	ShipmentID string           `json:"shipmentId,omitempty"`
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	// Link is an optional in-app path or download URL.
	Link   string `json:"link,omitempty"`
	IsRead bool   `json:"isRead"`
}

// Unread counts notifications not yet read.
func Unread(list []Notification) int {
	n := 0
	for _, x := range list {
		if !x.IsRead {
			n++
		}
	}
	return n
}

// SavedAddress is an address book entry. At most one per user is default.
type SavedAddress struct {
	CreatedAt     time.Time `json:"createdAt"`
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Label         string    `json:"label"`
	RecipientName string    `json:"recipientName"`
	AddressLine1  string    `json:"addressLine1"`
	AddressLine2  string    `json:"addressLine2,omitempty"`
	City          string    `json:"city"`
	State         string    `json:"state,omitempty"`
	PostalCode    string    `json:"postalCode"`
	Country       string    `json:"country"`
	Phone         string    `json:"phone,omitempty"`
	IsDefault     bool      `json:"isDefault"`
}

// Address flattens the entry into a shipment endpoint.
func (a SavedAddress) Address() Address {
	line := a.AddressLine1
	if a.AddressLine2 != "" {
		line += ", " + a.AddressLine2
	}
	return Address{Address: line, City: a.City, Country: a.Country}
}

// LocationType is the kind of network location.
type LocationType string

const (
	LocationServiceCenter LocationType = "service_center"
	LocationDropOff       LocationType = "drop_off"
	LocationPickup        LocationType = "pickup"
)

var LocationTypes = []LocationType{LocationServiceCenter, LocationDropOff, LocationPickup}

func (t LocationType) Label() string { return titleWords(string(t)) }

// Location is a service centre, drop-off or pickup point.
type Location struct {
	Hours      map[string]string `json:"hours,omitempty"`
	Latitude   *float64          `json:"latitude,omitempty"`
	Longitude  *float64          `json:"longitude,omitempty"`
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Type       LocationType      `json:"type"`
	Address    string            `json:"address"`
	City       string            `json:"city"`
	State      string            `json:"state,omitempty"`
	Country    string            `json:"country"`
	PostalCode string            `json:"postalCode,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Email      string            `json:"email,omitempty"`
	Services   []string          `json:"services,omitempty"`
	IsActive   bool              `json:"isActive"`
}

// PaymentStatus is the state of a recorded payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Tone() string {
	switch s {
	case PaymentCompleted:
		return "green"
	case PaymentFailed:
		return "red"
	case PaymentRefunded:
		return "gray"
	default:
		return "yellow"
	}
}

// Payment is a read-only payment record.
type Payment struct {
	CreatedAt       time.Time     `json:"createdAt"`
	ID              string        `json:"id"`
	ShipmentID      string        `json:"shipmentId"`
	UserID          string        `json:"userId"`
	Currency        string        `json:"currency"`
	Status          PaymentStatus `json:"status"`
	Method          string        `json:"paymentMethod"`
	ProviderPayment string        `json:"stripePaymentId,omitempty"`
	Amount          float64       `json:"amount"`
}

// AdminLog is one audit entry for an administrative action.
type AdminLog struct {
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
	ID        string         `json:"id"`
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	Target    string         `json:"target"`
}

// SupportTicket is a message sent from the support page.
type SupportTicket struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	// TrackingNumber optionally ties the ticket to a shipment.
	TrackingNumber string `json:"trackingNumber,omitempty"`
}

// Role is an account's authorization level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// HistoryEntry is one event in a user's activity log.
type HistoryEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
	Type      string         `json:"type"`
}

// User is an account with its profile.
type User struct {
	CreatedAt    time.Time      `json:"createdAt"`
	ID           string         `json:"uid"`
	Email        string         `json:"email"`
	DisplayName  string         `json:"displayName,omitempty"`
	PasswordHash string         `json:"-"`
	GoogleID     string         `json:"-"`
	Role         Role           `json:"role"`
	History      []HistoryEntry `json:"history,omitempty"`
	Disabled     bool           `json:"disabled"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Name is the display name, or the email when none was given.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
