package session

import (
	"fmt"
	"time"
)

// Session is one visitor's server-side state.
// Values holds strings only so sessions survive a JSON round trip.
type Session struct {
	CreatedAt    time.Time         `json:"created_at"`
	LastActiveAt time.Time         `json:"last_active_at"`
	ExpiresAt    time.Time         `json:"expires_at"`
	Values       map[string]string `json:"values,omitempty"`
	ID           string            `json:"id"`
	Token        string            `json:"token"`
	UserID       string            `json:"user_id,omitempty"`
	IP           string            `json:"ip,omitempty"`
	UserAgent    string            `json:"user_agent,omitempty"`

	dirty bool
}

// New returns an anonymous session that is already marked dirty.
func New(id, token string, now, expiresAt time.Time) *Session {
	return &Session{
		ID:           id,
		Token:        token,
		Values:       map[string]string{},
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		dirty:        true,
	}
}

func (s *Session) IsAuthenticated() bool { return s.UserID != "" }

// Authenticate binds the session to userID.
func (s *Session) Authenticate(userID string) {
	s.UserID = userID
	s.dirty = true
}

// Logout drops the user binding and every stored value.
func (s *Session) Logout() {
	s.UserID = ""
	clear(s.Values)
	s.dirty = true
}

func (s *Session) Set(key, val string) {
	if s.Values == nil {
		s.Values = map[string]string{}
	}
	if old, ok := s.Values[key]; ok && old == val {
		return
	}
	s.Values[key] = val
	s.dirty = true
}

func (s *Session) Get(key string) (string, bool) {
	v, ok := s.Values[key]
	return v, ok
}

func (s *Session) Delete(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

func (s *Session) Dirty() bool { return s.dirty }
func (s *Session) MarkDirty()  { s.dirty = true }
func (s *Session) ClearDirty() { s.dirty = false }

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Pop returns and removes key.
func (s *Session) Pop(key string) (string, error) {
	if s == nil {
		return "", ErrNotFound
	}
	v, ok := s.Values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	s.Delete(key)
	return v, nil
}
