package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/royalton/portal/internal/auth"
	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/internal/store"
	"github.com/royalton/portal/pkg/oauth"
	"github.com/royalton/portal/pkg/validator"
)

var now = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T) (*auth.Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	svc := auth.NewService(st,
		auth.WithHashCost(bcrypt.MinCost),
		auth.WithClock(func() time.Time { return now }),
	)
	return svc, st
}

func types(h []shipping.HistoryEntry) []string {
	out := make([]string, len(h))
	for i, e := range h {
		out[i] = e.Type
	}
	return out
}

func TestSignUpAndSignIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, st := newService(t)

	u, err := svc.SignUp(ctx, auth.SignUpInput{Email: " ada@example.com ", Password: "secret1", DisplayName: "Ada"})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", u.Email)
	require.Equal(t, shipping.RoleUser, u.Role)
	require.NotEqual(t, "secret1", u.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.SignUp(ctx, auth.SignUpInput{Email: "ADA@example.com", Password: "secret1"})
		require.ErrorIs(t, err, auth.ErrEmailTaken)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.SignUp(ctx, auth.SignUpInput{Email: "bob@example.com", Password: "123"})
		require.ErrorIs(t, err, validator.ErrValidation)
		errs := validator.ExtractValidationErrors(err)
		require.True(t, errs.Has("password"))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "ada@example.com", "nope")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		_, err = svc.SignIn(ctx, "ghost@example.com", "secret1")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	got, err := svc.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	svc.SignOut(ctx, u.ID)
	h, err := st.UserHistory(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []string{auth.EventSignUp, auth.EventSignIn, auth.EventSignOut}, types(h))
	require.Equal(t, now, h[0].Timestamp)
}

func TestSignInDisabled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)

	admin, err := svc.SignUp(ctx, auth.SignUpInput{Email: "admin@example.com", Password: "secret1"})
	require.NoError(t, err)
	u, err := svc.SignUp(ctx, auth.SignUpInput{Email: "eve@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.SetDisabled(ctx, admin.ID, u.ID, true)
	require.NoError(t, err)
	_, err = svc.SignIn(ctx, "eve@example.com", "secret1")
	require.ErrorIs(t, err, auth.ErrDisabled)

	_, err = svc.SetDisabled(ctx, admin.ID, u.ID, false)
	require.NoError(t, err)
	_, err = svc.SignIn(ctx, "eve@example.com", "secret1")
	require.NoError(t, err)
}

func TestSignInGoogle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, st := newService(t)

	t.Run("creates an account on first use", func(t *testing.T) {
		u, err := svc.SignInGoogle(ctx, &oauth.Identity{Subject: "g-1", Email: "new@example.com", Name: "New"})
		require.NoError(t, err)
		require.Equal(t, "g-1", u.GoogleID)
		require.Equal(t, "New", u.DisplayName)

		again, err := svc.SignInGoogle(ctx, &oauth.Identity{Subject: "g-1", Email: "new@example.com"})
		require.NoError(t, err)
		require.Equal(t, u.ID, again.ID)
	})

	t.Run("links an existing account by email", func(t *testing.T) {
		u, err := svc.SignUp(ctx, auth.SignUpInput{Email: "pw@example.com", Password: "secret1"})
		require.NoError(t, err)

		linked, err := svc.SignInGoogle(ctx, &oauth.Identity{Subject: "g-2", Email: "pw@example.com"})
		require.NoError(t, err)
		require.Equal(t, u.ID, linked.ID)

		stored, err := st.UserByGoogleID(ctx, "g-2")
		require.NoError(t, err)
		require.Equal(t, u.ID, stored.ID)
	})
}

func TestRoleChanges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, st := newService(t)

	admin, err := svc.SignUp(ctx, auth.SignUpInput{Email: "root@example.com", Password: "secret1"})
	require.NoError(t, err)
	u, err := svc.SignUp(ctx, auth.SignUpInput{Email: "sam@example.com", Password: "secret1"})
	require.NoError(t, err)

	promoted, err := svc.Promote(ctx, admin.ID, "sam@example.com")
	require.NoError(t, err)
	require.True(t, promoted.IsAdmin())

	h, err := st.UserHistory(ctx, u.ID)
	require.NoError(t, err)
	last := h[len(h)-1]
	require.Equal(t, auth.EventRoleChanged, last.Type)
	require.Equal(t, admin.ID, last.Payload["by"])
	require.Equal(t, "admin", last.Payload["to"])

	_, err = svc.Demote(ctx, admin.ID, "sam@example.com")
	require.NoError(t, err)

	logs, err := st.AdminLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, "demote_user", logs[0].Action)
	require.Equal(t, u.ID, logs[0].Target)

	t.Run("admins cannot change themselves", func(t *testing.T) {
		_, err := svc.Demote(ctx, admin.ID, "root@example.com")
		require.ErrorIs(t, err, auth.ErrSelfDemotion)
		require.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, admin.ID), auth.ErrSelfDemotion)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Promote(ctx, auth.ActorCLI, "ghost@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	require.NoError(t, svc.DeleteUser(ctx, admin.ID, u.ID))
	_, err = st.UserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSafeNext(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		next string
		want string
	}{
		{name: "local path", next: "/shipments?status=pending", want: "/shipments?status=pending"},
		{name: "empty", next: "", want: "/dashboard"},
		{name: "absolute url", next: "https://evil.example/", want: "/dashboard"},
		{name: "protocol relative", next: "//evil.example/", want: "/dashboard"},
		{name: "backslash trick", next: "/\\evil.example", want: "/dashboard"},
		{name: "relative path", next: "shipments", want: "/dashboard"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, auth.SafeNext(tc.next, "/dashboard"))
		})
	}
}
