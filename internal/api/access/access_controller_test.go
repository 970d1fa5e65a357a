package access

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-simple-crud/internal/types"
)

func registerAndLogin(t *testing.T, s *testStack, name, email string) (*types.PublicUser, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	u, err := s.controller.Register(ctx, types.RegisterRequest{UserName: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	p, err := s.controller.Login(ctx, types.LoginRequest{Email: email, Password: "secret1"})
	require.NoError(t, err)
	return u, p.SessionID
}

func TestOwnerOnlySoftDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStack()

	alice, aliceSession := registerAndLogin(t, s, "alice", "alice@example.com")
	bob, bobSession := registerAndLogin(t, s, "bob", "bob@example.com")
	assert.Equal(t, int64(1), alice.ID)
	assert.Equal(t, int64(2), bob.ID)

	created, err := s.controller.CreatePost(ctx, aliceSession, types.PostRequest{Title: "Hi", Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, alice.ID, created.OwnerID)

	err = s.controller.DeletePost(ctx, bobSession, created.ID)
	assert.ErrorIs(t, err, types.ErrForbidden)

	_, err = s.controller.UpdatePost(ctx, bobSession, created.ID, types.PostRequest{Title: "Mine", Content: "now"})
	assert.ErrorIs(t, err, types.ErrForbidden)

	got, err := s.controller.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hi", got.Title, "rejected update must not change the post")

	require.NoError(t, s.controller.DeletePost(ctx, aliceSession, created.ID))

	_, err = s.controller.GetPost(ctx, created.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	posts, err := s.controller.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	stored, err := s.posts.GetPostIncludingDeleted(ctx, created.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.DeletedAt)

	assert.ErrorIs(t, s.controller.DeletePost(ctx, aliceSession, created.ID), types.ErrNotFound)
	_, err = s.controller.UpdatePost(ctx, aliceSession, created.ID, types.PostRequest{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestAnonymousAccess(t *testing.T) {
	ctx := context.Background()
	s := newTestStack()
	_, aliceSession := registerAndLogin(t, s, "alice", "alice@example.com")
	created, err := s.controller.CreatePost(ctx, aliceSession, types.PostRequest{Title: "Hi", Content: "body"})
	require.NoError(t, err)

	t.Run("ReadsNeedNoSession", func(t *testing.T) {
		posts, err := s.controller.ListPosts(ctx)
		require.NoError(t, err)
		assert.Len(t, posts, 1)

		_, err = s.controller.GetPost(ctx, created.ID)
		assert.NoError(t, err)
	})

	t.Run("MutationsNeedSession", func(t *testing.T) {
		_, err := s.controller.CreatePost(ctx, uuid.Nil, types.PostRequest{Title: "Hi", Content: "body"})
		assert.ErrorIs(t, err, types.ErrUnauthorized)

		_, err = s.controller.UpdatePost(ctx, uuid.New(), created.ID, types.PostRequest{Title: "Hi", Content: "body"})
		assert.ErrorIs(t, err, types.ErrUnauthorized)

		assert.ErrorIs(t, s.controller.DeletePost(ctx, uuid.Nil, created.ID), types.ErrUnauthorized)
	})

	t.Run("UnauthorizedBeforeNotFound", func(t *testing.T) {
		assert.ErrorIs(t, s.controller.DeletePost(ctx, uuid.Nil, 999), types.ErrUnauthorized)
	})

	t.Run("CurrentUser", func(t *testing.T) {
		_, err := s.controller.CurrentUser(ctx, uuid.Nil)
		assert.ErrorIs(t, err, types.ErrUnauthorized)

		u, err := s.controller.CurrentUser(ctx, aliceSession)
		require.NoError(t, err)
		assert.Equal(t, "alice", u.UserName)
	})
}

func TestLogoutEndsSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStack()
	_, session := registerAndLogin(t, s, "alice", "alice@example.com")

	require.NoError(t, s.controller.Logout(ctx, session))
	require.NoError(t, s.controller.Logout(ctx, session))

	_, err := s.controller.CreatePost(ctx, session, types.PostRequest{Title: "Hi", Content: "body"})
	assert.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestRegisterAndLoginFailures(t *testing.T) {
	ctx := context.Background()
	s := newTestStack()
	registerAndLogin(t, s, "alice", "alice@example.com")

	_, err := s.controller.Register(ctx, types.RegisterRequest{UserName: "alice2", Email: "alice@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, types.ErrDuplicateEmail)

	_, errWrong := s.controller.Login(ctx, types.LoginRequest{Email: "alice@example.com", Password: "nope!"})
	_, errUnknown := s.controller.Login(ctx, types.LoginRequest{Email: "carol@example.com", Password: "secret1"})
	assert.ErrorIs(t, errWrong, types.ErrAuthenticationFailed)
	assert.Equal(t, errWrong, errUnknown)

	_, err = s.controller.CreatePost(ctx, uuid.Nil, types.PostRequest{})
	assert.ErrorIs(t, err, types.ErrUnauthorized, "identity is checked before input")
}
