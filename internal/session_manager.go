package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/royalton/portal/pkg/id"
	"github.com/royalton/portal/pkg/session"
)

const (
	defaultSessionCookie = "__sid"
	defaultSessionTTL    = 30 * 24 * time.Hour
)

// SessionManager moves sessions between the store and the session cookie.
type SessionManager struct {
	store    session.Store
	now      func() time.Time
	cookie   string
	domain   string
	ttl      time.Duration
	sameSite http.SameSite
	secure   bool
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:    store,
		now:      time.Now,
		cookie:   defaultSessionCookie,
		ttl:      defaultSessionTTL,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookie = name
		}
	}
}

func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(sm *SessionManager) {
		if ttl > 0 {
			sm.ttl = ttl
		}
	}
}

func WithSessionDomain(domain string) SessionOption {
	return func(sm *SessionManager) { sm.domain = domain }
}

func WithSessionSecure(secure bool) SessionOption {
	return func(sm *SessionManager) { sm.secure = secure }
}

func WithSessionSameSite(mode http.SameSite) SessionOption {
	return func(sm *SessionManager) { sm.sameSite = mode }
}

// Load returns the session named by the request cookie, or nil when the
// visitor has none. Unknown and expired tokens count as no session.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*session.Session, error) {
	ck, err := r.Cookie(sm.cookie)
	if err != nil || ck.Value == "" {
		return nil, nil
	}
	sess, err := sm.store.Get(ctx, ck.Value)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		return nil, nil
	case err != nil:
		return nil, err
	}
	sess.LastActiveAt = sm.now()
	return sess, nil
}

// Create stores a fresh anonymous session.
func (sm *SessionManager) Create(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	now := sm.now()
	sess := session.New(id.NewULID(), token, now, now.Add(sm.ttl))
	sess.UserAgent = r.UserAgent()
	sess.IP = remoteIP(r)
	if err := sm.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	sess.ClearDirty()
	return sess, nil
}

// Save persists a dirty session.
func (sm *SessionManager) Save(ctx context.Context, sess *session.Session) error {
	if !sess.Dirty() {
		return nil
	}
	if err := sm.store.Update(ctx, sess, sess.Token); err != nil {
		return err
	}
	sess.ClearDirty()
	return nil
}

// Rotate issues a new token for sess and drops the old one from the store.
func (sm *SessionManager) Rotate(ctx context.Context, sess *session.Session) error {
	prev := sess.Token
	token, err := newToken()
	if err != nil {
		return err
	}
	sess.Token = token
	sess.ExpiresAt = sm.now().Add(sm.ttl)
	sess.MarkDirty()
	if err := sm.store.Update(ctx, sess, prev); err != nil {
		sess.Token = prev
		return err
	}
	sess.ClearDirty()
	return nil
}

// Destroy removes sess from the store.
func (sm *SessionManager) Destroy(ctx context.Context, sess *session.Session) error {
	return sm.store.Delete(ctx, sess.Token)
}

// DestroyUser ends every session belonging to userID.
func (sm *SessionManager) DestroyUser(ctx context.Context, userID string) error {
	return sm.store.DeleteByUserID(ctx, userID)
}

// WriteCookie sets the session cookie for sess.
func (sm *SessionManager) WriteCookie(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, sm.httpCookie(sess.Token, int(sm.ttl/time.Second)))
}

// ClearCookie expires the session cookie.
func (sm *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, sm.httpCookie("", -1))
}

func (sm *SessionManager) httpCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookie,
		Value:    value,
		Path:     "/",
		Domain:   sm.domain,
		MaxAge:   maxAge,
		Secure:   sm.secure,
		HttpOnly: true,
		SameSite: sm.sameSite,
	}
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func remoteIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
