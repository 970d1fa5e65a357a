package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-simple-crud/internal/types"
)

func newRedisStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis, *clock) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := newClock()
	store := NewRedisSessionStore(rdb, slog.Default())
	store.now = c.now
	return store, mr, c
}

func TestRedisSessionStore(t *testing.T) {
	ctx := context.Background()

	newSession := func(c *clock) types.Session {
		return types.Session{
			ID:         uuid.New(),
			UserID:     1,
			CreatedAt:  c.t,
			ExpiresAt:  c.t.Add(time.Hour),
			LastSeenAt: c.t,
		}
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		store, mr, c := newRedisStore(t)
		s := newSession(c)

		require.NoError(t, store.CreateSession(ctx, s))
		assert.Equal(t, time.Hour, mr.TTL(sessionKey(s.ID)))

		got, err := store.GetSession(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.UserID, got.UserID)
		assert.True(t, s.ExpiresAt.Equal(got.ExpiresAt))
	})

	t.Run("UnknownSession", func(t *testing.T) {
		store, _, _ := newRedisStore(t)

		_, err := store.GetSession(ctx, uuid.New())
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("KeyExpiresWithSession", func(t *testing.T) {
		store, mr, c := newRedisStore(t)
		s := newSession(c)
		require.NoError(t, store.CreateSession(ctx, s))

		mr.FastForward(time.Hour + time.Second)

		_, err := store.GetSession(ctx, s.ID)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("AlreadyExpiredIsRejected", func(t *testing.T) {
		store, _, c := newRedisStore(t)
		s := newSession(c)
		s.ExpiresAt = c.t.Add(-time.Second)

		assert.Error(t, store.CreateSession(ctx, s))
	})

	t.Run("TouchKeepsTTL", func(t *testing.T) {
		store, mr, c := newRedisStore(t)
		s := newSession(c)
		require.NoError(t, store.CreateSession(ctx, s))

		mr.FastForward(10 * time.Minute)
		at := c.t.Add(10 * time.Minute)
		require.NoError(t, store.TouchSession(ctx, s.ID, at))

		got, err := store.GetSession(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, at.Equal(got.LastSeenAt))
		assert.Equal(t, 50*time.Minute, mr.TTL(sessionKey(s.ID)))
	})

	t.Run("TouchAfterRevokeDoesNotResurrect", func(t *testing.T) {
		store, mr, c := newRedisStore(t)
		s := newSession(c)
		require.NoError(t, store.CreateSession(ctx, s))
		require.NoError(t, store.RevokeSession(ctx, s.ID))

		require.NoError(t, store.TouchSession(ctx, s.ID, c.t))
		assert.False(t, mr.Exists(sessionKey(s.ID)))
	})

	t.Run("RevokeIsIdempotent", func(t *testing.T) {
		store, _, c := newRedisStore(t)
		s := newSession(c)
		require.NoError(t, store.CreateSession(ctx, s))

		require.NoError(t, store.RevokeSession(ctx, s.ID))
		require.NoError(t, store.RevokeSession(ctx, s.ID))

		_, err := store.GetSession(ctx, s.ID)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestRedisSessionStoreCorruptValue(t *testing.T) {
	ctx := context.Background()
	store, mr, _ := newRedisStore(t)
	id := uuid.New()
	require.NoError(t, mr.Set(sessionKey(id), "{not json"))

	_, err := store.GetSession(ctx, id)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.False(t, mr.Exists(sessionKey(id)), "unreadable session should be discarded")

	require.NoError(t, mr.Set(sessionKey(id), "{not json"))
	service := NewAuthService(new(MockUserFinder), plainVerifier{}, store, testSessionConfig, slog.Default())
	p, err := service.CurrentIdentity(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, p)
}
