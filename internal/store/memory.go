package store

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/pkg/id"
)

// Memory is an in-process Store. It keeps everything in maps guarded by one
// mutex and returns copies, so callers never share state with it.
type Memory struct {
	shipments     map[string]shipping.Shipment
	events        map[string][]shipping.TrackingEvent
	quotes        map[string]shipping.Quote
	notifications map[string]shipping.Notification
	addresses     map[string]shipping.SavedAddress
	users         map[string]shipping.User
	history       map[string][]shipping.HistoryEntry
	now           func() time.Time
	locations     []shipping.Location
	payments      []shipping.Payment
	adminLogs     []shipping.AdminLog
	tickets       []shipping.SupportTicket
	mu            sync.RWMutex
}

type MemoryOption func(*Memory)

// WithLocations seeds the location directory.
func WithLocations(list ...shipping.Location) MemoryOption {
	return func(m *Memory) { m.locations = append(m.locations, list...) }
}

// WithPayments seeds the read-only payment records.
func WithPayments(list ...shipping.Payment) MemoryOption {
	return func(m *Memory) { m.payments = append(m.payments, list...) }
}

// WithClock replaces time.Now for timestamps the store assigns.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		shipments:     map[string]shipping.Shipment{},
		events:        map[string][]shipping.TrackingEvent{},
		quotes:        map[string]shipping.Quote{},
		notifications: map[string]shipping.Notification{},
		addresses:     map[string]shipping.SavedAddress{},
		users:         map[string]shipping.User{},
		history:       map[string][]shipping.HistoryEntry{},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// sorted returns the values of src matching keep, ordered by less.
func sorted[T any](src map[string]T, keep func(T) bool, less func(a, b T) int) []T {
	out := make([]T, 0, len(src))
	for _, v := range src {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	slices.SortStableFunc(out, less)
	return out
}

func newestShipment(a, b shipping.Shipment) int {
	return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), strings.Compare(b.ID, a.ID))
}

func (m *Memory) CreateShipment(_ context.Context, s *shipping.Shipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, other := range m.shipments {
		if other.TrackingNumber == s.TrackingNumber {
			return fmt.Errorf("%w: tracking number %s", ErrDuplicate, s.TrackingNumber)
		}
	}
	if s.ID == "" {
		s.ID = id.NewULID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now()
	}
	s.UpdatedAt = s.CreatedAt
	m.shipments[s.ID] = *s
	return nil
}

func (m *Memory) ShipmentByID(_ context.Context, id string) (shipping.Shipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shipments[id]
	if !ok {
		return shipping.Shipment{}, ErrNotFound
	}
	return s, nil
}

func (m *Memory) ShipmentByTrackingNumber(_ context.Context, trackingNumber string) (shipping.Shipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.shipments {
		if s.TrackingNumber == trackingNumber {
			return s, nil
		}
	}
	return shipping.Shipment{}, ErrNotFound
}

func (m *Memory) UserShipments(_ context.Context, userID string) ([]shipping.Shipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sorted(m.shipments, func(s shipping.Shipment) bool { return s.UserID == userID }, newestShipment), nil
}

func (m *Memory) ListShipments(context.Context) ([]shipping.Shipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sorted(m.shipments, nil, newestShipment), nil
}

func (m *Memory) UpdateShipment(_ context.Context, id string, u ShipmentUpdate) (shipping.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shipments[id]
	if !ok {
		return shipping.Shipment{}, ErrNotFound
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
	if u.EstimatedDelivery != nil {
		t := *u.EstimatedDelivery
		s.EstimatedDelivery = &t
	}
	if u.ActualDelivery != nil {
		t := *u.ActualDelivery
		s.ActualDelivery = &t
	}
	s.UpdatedAt = m.now()
	m.shipments[id] = s
	return s, nil
}

func (m *Memory) DeleteShipment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shipments[id]; !ok {
		return ErrNotFound
	}
	delete(m.shipments, id)
	delete(m.events, id)
	return nil
}

func (m *Memory) TrackingEvents(_ context.Context, shipmentID string) ([]shipping.TrackingEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.events[shipmentID])
	slices.SortStableFunc(out, func(a, b shipping.TrackingEvent) int { return b.Timestamp.Compare(a.Timestamp) })
	return out, nil
}

func (m *Memory) AddTrackingEvent(_ context.Context, e *shipping.TrackingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shipments[e.ShipmentID]; !ok {
		return ErrNotFound
	}
	if e.ID == "" {
		e.ID = id.NewULID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = m.now()
	}
	m.events[e.ShipmentID] = append(m.events[e.ShipmentID], *e)
	return nil
}

func (m *Memory) AddQuote(_ context.Context, q *shipping.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.ID == "" {
		q.ID = id.NewULID()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = m.now()
	}
	m.quotes[q.ID] = *q
	return nil
}

func (m *Memory) UserQuotes(_ context.Context, userID string) ([]shipping.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sorted(m.quotes,
		func(q shipping.Quote) bool { return userID != "" && q.UserID == userID },
		func(a, b shipping.Quote) int { return b.CreatedAt.Compare(a.CreatedAt) }), nil
}

func (m *Memory) ExpireQuotes(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, q := range m.quotes {
		if q.Status == shipping.QuoteQuoted && !now.Before(q.ValidUntil) {
			q.Status = shipping.QuoteExpired
			m.quotes[k] = q
			n++
		}
	}
	return n, nil
}

func (m *Memory) UserNotifications(_ context.Context, userID string, limit int) ([]shipping.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := sorted(m.notifications,
		func(n shipping.Notification) bool { return n.UserID == userID },
		func(a, b shipping.Notification) int {
			return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), strings.Compare(b.ID, a.ID))
		})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) AddNotification(_ context.Context, n *shipping.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == "" {
		n.ID = id.NewULID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = m.now()
	}
	m.notifications[n.ID] = *n
	return nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.IsRead = true
	m.notifications[id] = n
	return nil
}

func (m *Memory) MarkAllNotificationsRead(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for k, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			m.notifications[k] = n
			count++
		}
	}
	return count, nil
}

func (m *Memory) ActiveLocations(context.Context) ([]shipping.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]shipping.Location, 0, len(m.locations))
	for _, l := range m.locations {
		if l.IsActive {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, func(a, b shipping.Location) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *Memory) SavedAddresses(_ context.Context, userID string) ([]shipping.SavedAddress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sorted(m.addresses,
		func(a shipping.SavedAddress) bool { return a.UserID == userID },
		func(a, b shipping.SavedAddress) int {
			if a.IsDefault != b.IsDefault {
				if a.IsDefault {
					return -1
				}
				return 1
			}
			return a.CreatedAt.Compare(b.CreatedAt)
		}), nil
}

func (m *Memory) AddSavedAddress(_ context.Context, a *shipping.SavedAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = id.NewULID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = m.now()
	}
	m.clearDefault(*a)
	m.addresses[a.ID] = *a
	return nil
}

func (m *Memory) UpdateSavedAddress(_ context.Context, a shipping.SavedAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.addresses[a.ID]
	if !ok || old.UserID != a.UserID {
		return ErrNotFound
	}
	a.CreatedAt = old.CreatedAt
	m.clearDefault(a)
	m.addresses[a.ID] = a
	return nil
}

func (m *Memory) clearDefault(a shipping.SavedAddress) {
	if !a.IsDefault {
		return
	}
	for k, other := range m.addresses {
		if other.UserID == a.UserID && other.ID != a.ID && other.IsDefault {
			other.IsDefault = false
			m.addresses[k] = other
		}
	}
}

func (m *Memory) DeleteSavedAddress(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.addresses[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(m.addresses, id)
	return nil
}

func (m *Memory) CreateUser(_ context.Context, u *shipping.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.users {
		if strings.EqualFold(other.Email, u.Email) {
			return fmt.Errorf("%w: email %s", ErrDuplicate, u.Email)
		}
	}
	if u.ID == "" {
		u.ID = id.NewULID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now()
	}
	if u.Role == "" {
		u.Role = shipping.RoleUser
	}
	stored := *u
	stored.History = nil
	m.users[u.ID] = stored
	return nil
}

func (m *Memory) findUser(match func(shipping.User) bool) (shipping.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return shipping.User{}, ErrNotFound
}

func (m *Memory) UserByID(_ context.Context, id string) (shipping.User, error) {
	return m.findUser(func(u shipping.User) bool { return u.ID == id })
}

func (m *Memory) UserByEmail(_ context.Context, email string) (shipping.User, error) {
	return m.findUser(func(u shipping.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *Memory) UserByGoogleID(_ context.Context, googleID string) (shipping.User, error) {
	return m.findUser(func(u shipping.User) bool { return googleID != "" && u.GoogleID == googleID })
}

// updateUser applies fn to the stored user under the write lock.
func (m *Memory) updateUser(userID string, fn func(*shipping.User) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	if err := fn(&u); err != nil {
		return err
	}
	m.users[userID] = u
	return nil
}

func (m *Memory) LinkGoogle(_ context.Context, userID, googleID string) error {
	return m.updateUser(userID, func(u *shipping.User) error {
		for _, other := range m.users {
			if other.ID != userID && other.GoogleID == googleID {
				return fmt.Errorf("%w: google account already linked", ErrDuplicate)
			}
		}
		u.GoogleID = googleID
		return nil
	})
}

func (m *Memory) ListUsers(context.Context) ([]shipping.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sorted(m.users, nil, func(a, b shipping.User) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), strings.Compare(b.ID, a.ID))
	}), nil
}

func (m *Memory) SetRole(_ context.Context, userID string, role shipping.Role) error {
	return m.updateUser(userID, func(u *shipping.User) error {
		u.Role = role
		return nil
	})
}

func (m *Memory) SetDisabled(_ context.Context, userID string, disabled bool) error {
	return m.updateUser(userID, func(u *shipping.User) error {
		u.Disabled = disabled
		return nil
	})
}

func (m *Memory) DeleteUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return ErrNotFound
	}
	delete(m.users, userID)
	delete(m.history, userID)
	return nil
}

func (m *Memory) AppendHistory(_ context.Context, userID string, e shipping.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return ErrNotFound
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = m.now()
	}
	e.Payload = maps.Clone(e.Payload)
	m.history[userID] = append(m.history[userID], e)
	return nil
}

func (m *Memory) UserHistory(_ context.Context, userID string) ([]shipping.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.history[userID]), nil
}

func (m *Memory) ListPayments(context.Context) ([]shipping.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.payments)
	slices.SortStableFunc(out, func(a, b shipping.Payment) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *Memory) LogAdminAction(_ context.Context, l *shipping.AdminLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == "" {
		l.ID = id.NewULID()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = m.now()
	}
	m.adminLogs = append(m.adminLogs, *l)
	return nil
}

func (m *Memory) AdminLogs(_ context.Context, limit int) ([]shipping.AdminLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.adminLogs)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) AddSupportTicket(_ context.Context, t *shipping.SupportTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = id.NewULID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.now()
	}
	m.tickets = append(m.tickets, *t)
	return nil
}

// SupportTickets returns the tickets received so far, oldest first.
func (m *Memory) SupportTickets() []shipping.SupportTicket {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.tickets)
}

var _ Store = (*Memory)(nil)
