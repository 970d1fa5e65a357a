package auth

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-simple-crud/internal/types"
)

func newMockSessionStore(t *testing.T) (*PostgresSessionStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresSessionStore(mock, slog.Default()), mock
}

func TestPostgresSessionStore_CreateSession(t *testing.T) {
	store, mock := newMockSessionStore(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := types.Session{ID: uuid.New(), UserID: 1, CreatedAt: now, ExpiresAt: now.Add(time.Hour), LastSeenAt: now}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions (id, user_id, created_at, expires_at, last_seen_at)")).
		WithArgs(s.ID, s.UserID, s.CreatedAt, s.ExpiresAt, s.LastSeenAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.CreateSession(context.Background(), s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionStore_GetSession(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("WHERE id = $1 AND revoked_at IS NULL AND expires_at > NOW()")
	columns := []string{"id", "user_id", "created_at", "expires_at", "last_seen_at"}

	t.Run("Live", func(t *testing.T) {
		store, mock := newMockSessionStore(t)
		id := uuid.New()
		now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		mock.ExpectQuery(query).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows(columns).AddRow(id, int64(1), now, now.Add(time.Hour), now))

		s, err := store.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, s.ID)
		assert.Equal(t, int64(1), s.UserID)
		assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)
	})

	t.Run("RevokedOrMissing", func(t *testing.T) {
		store, mock := newMockSessionStore(t)
		id := uuid.New()
		mock.ExpectQuery(query).WithArgs(id).WillReturnError(pgx.ErrNoRows)

		_, err := store.GetSession(ctx, id)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("DatabaseError", func(t *testing.T) {
		store, mock := newMockSessionStore(t)
		id := uuid.New()
		mock.ExpectQuery(query).WithArgs(id).WillReturnError(errors.New("connection reset"))

		_, err := store.GetSession(ctx, id)
		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrNotFound)
	})
}

func TestPostgresSessionStore_TouchSession(t *testing.T) {
	store, mock := newMockSessionStore(t)
	id := uuid.New()
	at := time.Date(2025, 1, 1, 12, 5, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET last_seen_at = $2 WHERE id = $1 AND revoked_at IS NULL")).
		WithArgs(id, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.TouchSession(context.Background(), id, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionStore_RevokeSession(t *testing.T) {
	ctx := context.Background()
	revoke := regexp.QuoteMeta("UPDATE sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL")

	t.Run("Live", func(t *testing.T) {
		store, mock := newMockSessionStore(t)
		id := uuid.New()
		mock.ExpectExec(revoke).WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, store.RevokeSession(ctx, id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyRevokedIsNotAnError", func(t *testing.T) {
		store, mock := newMockSessionStore(t)
		id := uuid.New()
		mock.ExpectExec(revoke).WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		require.NoError(t, store.RevokeSession(ctx, id))
	})
}
