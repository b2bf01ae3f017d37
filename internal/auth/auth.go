// Package auth owns accounts: password and Google sign-in, the per-user
// activity history, role changes, and the HTTP middleware that puts the
// signed-in user on each request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/internal/store"
	"github.com/royalton/portal/pkg/logger"
	"github.com/royalton/portal/pkg/oauth"
	"github.com/royalton/portal/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrDisabled           = errors.New("auth: account disabled")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrSelfDemotion       = errors.New("auth: admins cannot change their own role")
)

// History entry types.
const (
	EventSignUp         = "sign_up"
	EventSignIn         = "sign_in"
	EventSignOut        = "sign_out"
	EventRoleChanged    = "role_changed"
	EventCreateShipment = "create_shipment"
	EventTrack          = "track"
	EventDisabled       = "disable_user"
	EventEnabled        = "enable_user"
)

// ActorCLI is recorded as the actor for changes made from the command line.
const ActorCLI = "cli"

const minPasswordLen = 6

// Service implements the account operations on top of a store.
type Service struct {
	store store.Store
	log   *slog.Logger
	now   func() time.Time
	cost  int
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock replaces time.Now for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithHashCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, log: logger.NewNope(), now: time.Now, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUpInput is the registration form.
type SignUpInput struct {
	Email       string
	Password    string
	DisplayName string
}

func (in SignUpInput) Validate() error {
	return validator.Apply(
		validator.RequiredString("email", in.Email),
		validator.Email("email", in.Email),
		validator.MaxLenString("email", in.Email, 254),
		validator.MinLenString("password", in.Password, minPasswordLen),
		validator.MaxLenString("password", in.Password, 72),
		validator.MaxLenString("display_name", in.DisplayName, 100),
	)
}

// SignUp creates an account with the user role and records sign_up.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (shipping.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := in.Validate(); err != nil {
		return shipping.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return shipping.User{}, fmt.Errorf("auth: hash password: %w", err)
	}
	u := shipping.User{
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		PasswordHash: string(hash),
		Role:         shipping.RoleUser,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return shipping.User{}, ErrEmailTaken
		}
		return shipping.User{}, err
	}
	s.Record(ctx, u.ID, EventSignUp, map[string]any{"method": "password"})
	return u, nil
}

// SignIn checks the password. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, password string) (shipping.User, error) {
	u, err := s.store.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return shipping.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return shipping.User{}, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return shipping.User{}, ErrInvalidCredentials
	}
	if u.Disabled {
		return shipping.User{}, ErrDisabled
	}
	s.Record(ctx, u.ID, EventSignIn, map[string]any{"method": "password"})
	return u, nil
}

// SignInGoogle signs in the account linked to id, linking by email or
// creating an account on first use.
func (s *Service) SignInGoogle(ctx context.Context, id *oauth.Identity) (shipping.User, error) {
	u, err := s.store.UserByGoogleID(ctx, id.Subject)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		u, err = s.store.UserByEmail(ctx, id.Email)
		switch {
		case err == nil:
			if err := s.store.LinkGoogle(ctx, u.ID, id.Subject); err != nil {
				return shipping.User{}, err
			}
		case errors.Is(err, store.ErrNotFound):
			u = shipping.User{Email: id.Email, DisplayName: id.Name, GoogleID: id.Subject, Role: shipping.RoleUser, CreatedAt: s.now()}
			if err := s.store.CreateUser(ctx, &u); err != nil {
				return shipping.User{}, err
			}
			s.Record(ctx, u.ID, EventSignUp, map[string]any{"method": "google"})
		default:
			return shipping.User{}, err
		}
	default:
		return shipping.User{}, err
	}

	if u.Disabled {
		return shipping.User{}, ErrDisabled
	}
	s.Record(ctx, u.ID, EventSignIn, map[string]any{"method": "google"})
	return u, nil
}

// SignOut records the sign-out. Ending the session is the caller's job.
func (s *Service) SignOut(ctx context.Context, userID string) {
	if userID != "" {
		s.Record(ctx, userID, EventSignOut, nil)
	}
}

// AddHistoryEntry appends e to the user's history, stamping it now.
func (s *Service) AddHistoryEntry(ctx context.Context, userID string, e shipping.HistoryEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	return s.store.AppendHistory(ctx, userID, e)
}

// Record is AddHistoryEntry for side records whose failure must not fail
// the operation that produced them.
func (s *Service) Record(ctx context.Context, userID, kind string, payload map[string]any) {
	if err := s.AddHistoryEntry(ctx, userID, shipping.HistoryEntry{Type: kind, Payload: payload}); err != nil {
		s.log.WarnContext(ctx, "history entry not saved",
			slog.String("user_id", userID), slog.String("type", kind), slog.Any("error", err))
	}
}
