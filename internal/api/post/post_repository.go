package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-simple-crud/app/db"
	"github.com/FACorreiaa/go-simple-crud/internal/types"
)

var _ PostRepo = (*PostgresPostRepo)(nil)

// PostRepo defines the contract for post persistence. Every method except
// GetPostIncludingDeleted ignores soft-deleted rows.
type PostRepo interface {
	CreatePost(ctx context.Context, ownerID int64, title, content string) (*types.Post, error)
	// GetVisiblePost returns types.ErrNotFound for unknown and soft-deleted posts.
	GetVisiblePost(ctx context.Context, id int64) (*types.Post, error)
	// ListVisiblePosts returns visible posts ordered by id.
	ListVisiblePosts(ctx context.Context) ([]types.Post, error)
	// UpdatePost returns types.ErrNotFound when no visible post matched.
	UpdatePost(ctx context.Context, id int64, title, content string) (*types.Post, error)
	// SoftDeletePost returns types.ErrNotFound when no visible post matched.
	SoftDeletePost(ctx context.Context, id int64) error
	// GetPostIncludingDeleted is an administrative read that ignores deleted_at.
	GetPostIncludingDeleted(ctx context.Context, id int64) (*types.Post, error)
}

type PostgresPostRepo struct {
	logger *slog.Logger
	db     database.Querier
}

func NewPostgresPostRepo(db database.Querier, logger *slog.Logger) *PostgresPostRepo {
	return &PostgresPostRepo{
		logger: logger,
		db:     db,
	}
}

func startSpan(ctx context.Context, name, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", "posts"),
	)
	return otel.Tracer("PostRepo").Start(ctx, name, trace.WithAttributes(attrs...))
}

func (r *PostgresPostRepo) CreatePost(ctx context.Context, ownerID int64, title, content string) (*types.Post, error) {
	ctx, span := startSpan(ctx, "CreatePost", "INSERT", attribute.Int64("post.owner_id", ownerID))
	defer span.End()

	query := `
		INSERT INTO posts (owner_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, owner_id, title, content, created_at, updated_at
	`
	var p types.Post
	start := time.Now()
	err := r.db.QueryRow(ctx, query, ownerID, title, content).
		Scan(&p.ID, &p.OwnerID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	database.ObserveQuery(ctx, "posts", "INSERT", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert post", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Insert failed")
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	span.SetAttributes(attribute.Int64("post.id", p.ID))
	return &p, nil
}

func (r *PostgresPostRepo) GetVisiblePost(ctx context.Context, id int64) (*types.Post, error) {
	ctx, span := startSpan(ctx, "GetVisiblePost", "SELECT", attribute.Int64("post.id", id))
	defer span.End()

	query := `
		SELECT id, owner_id, title, content, created_at, updated_at
		FROM posts
		WHERE id = $1 AND deleted_at IS NULL
	`
	var p types.Post
	start := time.Now()
	err := r.db.QueryRow(ctx, query, id).
		Scan(&p.ID, &p.OwnerID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	database.ObserveQuery(ctx, "posts", "SELECT", start, err)
	if err != nil {
		return nil, r.rowError(ctx, span, "get", err)
	}
	return &p, nil
}

func (r *PostgresPostRepo) ListVisiblePosts(ctx context.Context) ([]types.Post, error) {
	ctx, span := startSpan(ctx, "ListVisiblePosts", "SELECT")
	defer span.End()

	query := `
		SELECT id, owner_id, title, content, created_at, updated_at
		FROM posts
		WHERE deleted_at IS NULL
		ORDER BY id ASC
	`
	start := time.Now()
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		database.ObserveQuery(ctx, "posts", "SELECT", start, err)
		r.logger.ErrorContext(ctx, "Failed to query posts", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]types.Post, 0)
	for rows.Next() {
		var p types.Post
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			database.ObserveQuery(ctx, "posts", "SELECT", start, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Scan failed")
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	err = rows.Err()
	database.ObserveQuery(ctx, "posts", "SELECT", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Rows iteration failed")
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	span.SetAttributes(attribute.Int("posts.count", len(posts)))
	return posts, nil
}

func (r *PostgresPostRepo) UpdatePost(ctx context.Context, id int64, title, content string) (*types.Post, error) {
	ctx, span := startSpan(ctx, "UpdatePost", "UPDATE", attribute.Int64("post.id", id))
	defer span.End()

	query := `
		UPDATE posts
		SET title = $2, content = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id, owner_id, title, content, created_at, updated_at
	`
	var p types.Post
	start := time.Now()
	err := r.db.QueryRow(ctx, query, id, title, content).
		Scan(&p.ID, &p.OwnerID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	database.ObserveQuery(ctx, "posts", "UPDATE", start, err)
	if err != nil {
		return nil, r.rowError(ctx, span, "update", err)
	}
	return &p, nil
}

func (r *PostgresPostRepo) SoftDeletePost(ctx context.Context, id int64) error {
	ctx, span := startSpan(ctx, "SoftDeletePost", "UPDATE", attribute.Int64("post.id", id))
	defer span.End()

	start := time.Now()
	tag, err := r.db.Exec(ctx, `UPDATE posts SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	database.ObserveQuery(ctx, "posts", "UPDATE", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to soft delete post", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update failed")
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Post not found")
		return fmt.Errorf("post %d not found or already deleted: %w", id, types.ErrNotFound)
	}
	return nil
}

func (r *PostgresPostRepo) GetPostIncludingDeleted(ctx context.Context, id int64) (*types.Post, error) {
	ctx, span := startSpan(ctx, "GetPostIncludingDeleted", "SELECT", attribute.Int64("post.id", id))
	defer span.End()

	query := `
		SELECT id, owner_id, title, content, created_at, updated_at, deleted_at
		FROM posts
		WHERE id = $1
	`
	var p types.Post
	start := time.Now()
	err := r.db.QueryRow(ctx, query, id).
		Scan(&p.ID, &p.OwnerID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	database.ObserveQuery(ctx, "posts", "SELECT", start, err)
	if err != nil {
		return nil, r.rowError(ctx, span, "get", err)
	}
	return &p, nil
}

func (r *PostgresPostRepo) rowError(ctx context.Context, span trace.Span, op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		span.SetStatus(codes.Error, "Post not found")
		return fmt.Errorf("post not found: %w", types.ErrNotFound)
	}
	r.logger.ErrorContext(ctx, "Post query failed", slog.String("operation", op), slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, "Query failed")
	return fmt.Errorf("failed to %s post: %w", op, err)
}
