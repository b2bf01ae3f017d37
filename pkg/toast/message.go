package toast

import (
	"strings"
	"time"
)

// Category selects the visual style of a message.
type Category string

// Supported categories.
const (
	Success Category = "success"
	Error   Category = "error"
	Info    Category = "info"
	Warning Category = "warning"
)

// ParseCategory maps a string to a Category, defaulting to Info.
func ParseCategory(s string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case Success, Error, Info, Warning:
		return c
	default:
		return Info
	}
}

// Message is a single active notification.
type Message struct {
	CreatedAt time.Time     `json:"created_at"`
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Category  Category      `json:"category"`
	Lifetime  time.Duration `json:"lifetime"`
}

// Sticky reports whether the message never expires on its own.
func (m Message) Sticky() bool {
	return m.Lifetime <= 0
}

// EventKind describes a change to the active set.
type EventKind string

// Event kinds.
const (
	Published EventKind = "published"
	Dismissed EventKind = "dismissed"
	Expired   EventKind = "expired"
)

// Event is delivered to subscribers for every change to the active set.
type Event struct {
	Kind    EventKind `json:"kind"`
	Message Message   `json:"message"`
}
