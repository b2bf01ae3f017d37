package db_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/royalton/portal/pkg/db"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error   { t.committed = true; return nil }
func (t *fakeTx) Rollback(context.Context) error { t.rolledBack = true; return nil }

type fakeStarter struct {
	tx  *fakeTx
	err error
}

func (s *fakeStarter) Begin(context.Context) (pgx.Tx, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tx, nil
}

func TestWithTx(t *testing.T) {
	t.Parallel()

	t.Run("commits on success", func(t *testing.T) {
		t.Parallel()

		s := &fakeStarter{tx: &fakeTx{}}
		require.NoError(t, db.WithTx(context.Background(), s, func(pgx.Tx) error { return nil }))
		require.True(t, s.tx.committed)
		require.False(t, s.tx.rolledBack)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		s := &fakeStarter{tx: &fakeTx{}}
		require.ErrorIs(t, db.WithTx(context.Background(), s, func(pgx.Tx) error { return boom }), boom)
		require.True(t, s.tx.rolledBack)
		require.False(t, s.tx.committed)
	})

	t.Run("rolls back and repanics", func(t *testing.T) {
		t.Parallel()

		s := &fakeStarter{tx: &fakeTx{}}
		require.Panics(t, func() {
			_ = db.WithTx(context.Background(), s, func(pgx.Tx) error { panic("oops") })
		})
		require.True(t, s.tx.rolledBack)
	})

	t.Run("returns begin error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("no conn")
		require.ErrorIs(t, db.WithTx(context.Background(), &fakeStarter{err: boom}, func(pgx.Tx) error { return nil }), boom)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	require.True(t, db.IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	require.False(t, db.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, db.IsUniqueViolation(errors.New("x")))
}

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := db.Connect(context.Background(), db.Config{URL: "postgres://%zz"})
	require.ErrorIs(t, err, db.ErrParseConfig)
}
