// Package shipping holds the portal's domain records and the rules that are
// independent of storage: tracking numbers, delivery estimates, quote
// pricing, and the filters used by customer and admin listings.
package shipping

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

var (
	ErrUnknownStatus  = errors.New("shipping: unknown status")
	ErrUnknownService = errors.New("shipping: unknown service type")
)

// Status is the lifecycle state of a shipment.
type Status string

const (
	StatusPending        Status = "pending"
	StatusPickedUp       Status = "picked_up"
	StatusInTransit      Status = "in_transit"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusPending, StatusPickedUp, StatusInTransit,
	StatusOutForDelivery, StatusDelivered, StatusCancelled,
}

// ParseStatus accepts both "in_transit" and "in-transit" spellings.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPickedUp, StatusInTransit, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Label is the human form, e.g. "Out For Delivery".
func (s Status) Label() string {
	return titleWords(string(s))
}

// Tone groups statuses for badge colouring.
func (s Status) Tone() string {
	switch s {
	case StatusDelivered:
		return "green"
	case StatusInTransit, StatusOutForDelivery:
		return "blue"
	case StatusCancelled:
		return "red"
	default:
		return "orange"
	}
}

// ServiceType is the product a shipment is booked under.
type ServiceType string

const (
	ServiceDomestic      ServiceType = "domestic"
	ServiceInternational ServiceType = "international"
	ServiceExpress       ServiceType = "express"
	ServiceFreight       ServiceType = "freight"
)

var ServiceTypes = []ServiceType{ServiceDomestic, ServiceInternational, ServiceExpress, ServiceFreight}

func ParseServiceType(s string) (ServiceType, error) {
	st := ServiceType(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case ServiceDomestic, ServiceInternational, ServiceExpress, ServiceFreight:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownService, s)
}

func (s ServiceType) Label() string { return titleWords(string(s)) }

// Address is one end of a shipment.
type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
}

func (a Address) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Address, a.City, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Short is "City, Country".
func (a Address) Short() string {
	return Address{City: a.City, Country: a.Country}.String()
}

// Dimensions are in centimetres.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Recipient is who receives the parcel.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Shipment is the normalized shipment record. Optional measurements are
// pointers so an unknown value is distinguishable from zero.
type Shipment struct {
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
	Weight            *float64    `json:"weight,omitempty"`
	Dimensions        *Dimensions `json:"dimensions,omitempty"`
	DeclaredValue     *float64    `json:"declaredValue,omitempty"`
	PickupDate        *time.Time  `json:"pickupDate,omitempty"`
	EstimatedDelivery *time.Time  `json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time  `json:"actualDelivery,omitempty"`
	Recipient         Recipient   `json:"recipient"`
	Origin            Address     `json:"origin"`
	Destination       Address     `json:"destination"`
	ID                string      `json:"id"`
	UserID            string      `json:"userId,omitempty"`
	TrackingNumber    string      `json:"trackingNumber"`
	Status            Status      `json:"status"`
	ServiceType       ServiceType `json:"serviceType"`
	Notes             string      `json:"notes,omitempty"`
}

// Delivered reports whether the shipment reached its final state.
func (s Shipment) Delivered() bool { return s.Status == StatusDelivered }

// Active is true for shipments still moving through the network.
func (s Shipment) Active() bool {
	return s.Status != StatusDelivered && s.Status != StatusCancelled
}

// NewTrackingNumber returns "TXP" followed by the unix milliseconds of now
// and a random suffix below 1000.
func NewTrackingNumber(now time.Time) string {
	return fmt.Sprintf("TXP%d%d", now.UnixMilli(), rand.IntN(1000))
}

// EstimateDelivery adds the service's transit days to from: express 1,
// domestic 3, anything else 7.
func EstimateDelivery(service ServiceType, from time.Time) time.Time {
	switch service {
	case ServiceExpress:
		return from.AddDate(0, 0, 1)
	case ServiceDomestic:
		return from.AddDate(0, 0, 3)
	default:
		return from.AddDate(0, 0, 7)
	}
}

func titleWords(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
