package post

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-simple-crud/internal/types"
)

var (
	postColumns = []string{"id", "owner_id", "title", "content", "created_at", "updated_at"}
	created     = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
)

func newMockRepo(t *testing.T) (*PostgresPostRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresPostRepo(mock, slog.Default()), mock
}

func TestPostgresPostRepo_CreatePost(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO posts (owner_id, title, content, created_at, updated_at)")).
		WithArgs(int64(1), "Hi", "body").
		WillReturnRows(pgxmock.NewRows(postColumns).AddRow(int64(1), int64(1), "Hi", "body", created, created))

	p, err := repo.CreatePost(context.Background(), 1, "Hi", "body")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, int64(1), p.OwnerID)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.Nil(t, p.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPostRepo_GetVisiblePost(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("WHERE id = $1 AND deleted_at IS NULL")

	t.Run("Visible", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows(postColumns).AddRow(int64(1), int64(1), "Hi", "body", created, created))

		p, err := repo.GetVisiblePost(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Hi", p.Title)
	})

	t.Run("DeletedOrMissing", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs(int64(1)).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetVisiblePost(ctx, 1)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("DatabaseError", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs(int64(1)).WillReturnError(errors.New("connection reset"))

		_, err := repo.GetVisiblePost(ctx, 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrNotFound)
	})
}

func TestPostgresPostRepo_ListVisiblePosts(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("WHERE deleted_at IS NULL ORDER BY id ASC")

	t.Run("Ordered", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).
			WillReturnRows(pgxmock.NewRows(postColumns).
				AddRow(int64(1), int64(1), "first", "a", created, created).
				AddRow(int64(3), int64(2), "third", "c", created, created))

		posts, err := repo.ListVisiblePosts(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, int64(1), posts[0].ID)
		assert.Equal(t, int64(3), posts[1].ID)
	})

	t.Run("EmptyIsNotNil", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).WillReturnRows(pgxmock.NewRows(postColumns))

		posts, err := repo.ListVisiblePosts(ctx)
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})
}

func TestPostgresPostRepo_UpdatePost(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("SET title = $2, content = $3, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL")

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		later := created.Add(time.Minute)
		mock.ExpectQuery(query).
			WithArgs(int64(1), "New", "text").
			WillReturnRows(pgxmock.NewRows(postColumns).AddRow(int64(1), int64(1), "New", "text", created, later))

		p, err := repo.UpdatePost(ctx, 1, "New", "text")
		require.NoError(t, err)
		assert.Equal(t, "New", p.Title)
		assert.True(t, p.UpdatedAt.After(p.CreatedAt))
	})

	t.Run("DeletedPost", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs(int64(1), "New", "text").WillReturnRows(pgxmock.NewRows(postColumns))

		_, err := repo.UpdatePost(ctx, 1, "New", "text")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestPostgresPostRepo_SoftDeletePost(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("UPDATE posts SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL")

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(query).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.SoftDeletePost(ctx, 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyDeleted", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(query).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.SoftDeletePost(ctx, 1), types.ErrNotFound)
	})
}

func TestPostgresPostRepo_GetPostIncludingDeleted(t *testing.T) {
	repo, mock := newMockRepo(t)
	deleted := created.Add(time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, title, content, created_at, updated_at, deleted_at")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(append(postColumns, "deleted_at")).
			AddRow(int64(1), int64(1), "Hi", "body", created, created, &deleted))

	p, err := repo.GetPostIncludingDeleted(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, p.DeletedAt)
	assert.True(t, deleted.Equal(*p.DeletedAt))
}
