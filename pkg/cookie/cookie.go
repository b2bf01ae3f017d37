// Package cookie reads and writes plain, signed and encrypted cookies and
// one-shot flash values.
//
// Keys for signing and encryption are derived separately from one secret with
// HKDF; encrypted values are sealed with XChaCha20-Poly1305.
package cookie

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrNoSecret  = errors.New("cookie: secret required")
	ErrBadSig    = errors.New("cookie: invalid signature")
	ErrDecrypt   = errors.New("cookie: decryption failed")
	ErrBadSecret = errors.New("cookie: secret must be at least 32 bytes")
)

const flashPrefix = "flash_"

// Manager applies shared attributes to every cookie it writes.
type Manager struct {
	signKey  []byte
	sealKey  []byte
	domain   string
	path     string
	sameSite http.SameSite
	secure   bool
	httpOnly bool
}

// Option configures a Manager.
type Option func(*Manager)

// New returns a Manager. Without a secret only plain cookies work.
func New(secret string, opts ...Option) (*Manager, error) {
	m := &Manager{path: "/", httpOnly: true, sameSite: http.SameSiteLaxMode}
	for _, opt := range opts {
		opt(m)
	}
	if secret == "" {
		return m, nil
	}
	if len(secret) < 32 {
		return nil, ErrBadSecret
	}
	m.signKey = derive(secret, "cookie-sign", 32)
	m.sealKey = derive(secret, "cookie-seal", chacha20poly1305.KeySize)
	return m, nil
}

func derive(secret, info string, n int) []byte {
	key := make([]byte, n)
	_, _ = io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key)
	return key
}

func WithDomain(domain string) Option { return func(m *Manager) { m.domain = domain } }
func WithSecure(secure bool) Option   { return func(m *Manager) { m.secure = secure } }

func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) { m.sameSite = ss }
}

func WithPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

// SetSigned writes value in the clear with an HMAC-SHA256 tag.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.signKey == nil {
		return ErrNoSecret
	}
	enc := base64.RawURLEncoding
	m.Set(w, name, enc.EncodeToString([]byte(value))+"."+enc.EncodeToString(m.sign(name, value)), maxAge)
	return nil
}

// GetSigned verifies and returns a value written by SetSigned. The tag
// covers the cookie name, so values cannot be moved between cookies.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.signKey == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	payload, tag, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err1 := base64.RawURLEncoding.DecodeString(payload)
	sig, err2 := base64.RawURLEncoding.DecodeString(tag)
	if err1 != nil || err2 != nil || !hmac.Equal(sig, m.sign(name, string(value))) {
		return "", ErrBadSig
	}
	return string(value), nil
}

func (m *Manager) sign(name, value string) []byte {
	mac := hmac.New(sha256.New, m.signKey)
	mac.Write([]byte(name))
	mac.Write([]byte{0})
	mac.Write([]byte(value))
	return mac.Sum(nil)
}

// SetEncrypted seals value so the client can neither read nor alter it.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.sealKey == nil {
		return ErrNoSecret
	}
	aead, err := chacha20poly1305.NewX(m.sealKey)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(value)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := aead.Seal(nonce, nonce, []byte(value), []byte(name))
	m.Set(w, name, base64.RawURLEncoding.EncodeToString(sealed), maxAge)
	return nil
}

func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	if m.sealKey == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrDecrypt
	}
	aead, err := chacha20poly1305.NewX(m.sealKey)
	if err != nil {
		return "", err
	}
	if len(data) < aead.NonceSize() {
		return "", ErrDecrypt
	}
	plain, err := aead.Open(nil, data[:aead.NonceSize()], data[aead.NonceSize():], []byte(name))
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// SetFlash stores value as JSON for the next request.
func (m *Manager) SetFlash(w http.ResponseWriter, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return m.SetEncrypted(w, flashPrefix+key, string(data), 0)
}

// Flash decodes the flash value into dest and deletes the cookie.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	raw, err := m.GetEncrypted(r, flashPrefix+key)
	if err != nil {
		return err
	}
	m.Delete(w, flashPrefix+key)
	return json.Unmarshal([]byte(raw), dest)
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}
