package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/royalton/portal/pkg/cache"
)

// Store persists sessions by token.
type Store interface {
	Create(ctx context.Context, s *Session) error
	// Get returns ErrNotFound for unknown tokens and ErrExpired for stale ones.
	Get(ctx context.Context, token string) (*Session, error)
	// Update saves s. previousToken is set when the token was rotated.
	Update(ctx context.Context, s *Session, previousToken string) error
	Delete(ctx context.Context, token string) error
	// DeleteByUserID signs a user out everywhere.
	DeleteByUserID(ctx context.Context, userID string) error
}

// CacheStore keeps sessions in one cache and a user-to-tokens index in
// another.
type CacheStore struct {
	sessions cache.Cache[Session]
	users    cache.Cache[[]string]
	now      func() time.Time
	mu       sync.Mutex
}

// NewCacheStore builds a Store over the given caches.
func NewCacheStore(sessions cache.Cache[Session], users cache.Cache[[]string]) *CacheStore {
	return &CacheStore{sessions: sessions, users: users, now: time.Now}
}

func (cs *CacheStore) Create(ctx context.Context, s *Session) error {
	return cs.put(ctx, s)
}

func (cs *CacheStore) Get(ctx context.Context, token string) (*Session, error) {
	s, err := cs.sessions.Get(ctx, token)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.Expired(cs.now()) {
		_ = cs.sessions.Delete(ctx, token)
		return nil, ErrExpired
	}
	return &s, nil
}

func (cs *CacheStore) Update(ctx context.Context, s *Session, previousToken string) error {
	if previousToken != "" && previousToken != s.Token {
		if err := cs.sessions.Delete(ctx, previousToken); err != nil {
			return err
		}
		if err := cs.unindex(ctx, s.UserID, previousToken); err != nil {
			return err
		}
	}
	return cs.put(ctx, s)
}

func (cs *CacheStore) Delete(ctx context.Context, token string) error {
	s, err := cs.sessions.Get(ctx, token)
	if errors.Is(err, cache.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := cs.sessions.Delete(ctx, token); err != nil {
		return err
	}
	return cs.unindex(ctx, s.UserID, token)
}

func (cs *CacheStore) DeleteByUserID(ctx context.Context, userID string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	tokens, err := cs.users.Get(ctx, userID)
	if errors.Is(err, cache.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		if err := cs.sessions.Delete(ctx, tok); err != nil {
			return err
		}
	}
	return cs.users.Delete(ctx, userID)
}

func (cs *CacheStore) put(ctx context.Context, s *Session) error {
	ttl := s.ExpiresAt.Sub(cs.now())
	if s.ExpiresAt.IsZero() {
		ttl = -1
	} else if ttl <= 0 {
		return ErrExpired
	}
	if err := cs.sessions.Set(ctx, s.Token, *s, ttl); err != nil {
		return err
	}
	if s.UserID == "" {
		return nil
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	tokens, err := cs.users.Get(ctx, s.UserID)
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		return err
	}
	if slices.Contains(tokens, s.Token) {
		return nil
	}
	return cs.users.Set(ctx, s.UserID, append(tokens, s.Token), -1)
}

func (cs *CacheStore) unindex(ctx context.Context, userID, token string) error {
	if userID == "" {
		return nil
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()

	tokens, err := cs.users.Get(ctx, userID)
	if errors.Is(err, cache.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	tokens = slices.DeleteFunc(tokens, func(t string) bool { return t == token })
	if len(tokens) == 0 {
		return cs.users.Delete(ctx, userID)
	}
	return cs.users.Set(ctx, userID, tokens, -1)
}

var _ Store = (*CacheStore)(nil)
