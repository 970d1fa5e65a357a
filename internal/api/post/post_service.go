package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-simple-crud/app/observability/metrics"
	"github.com/FACorreiaa/go-simple-crud/internal/types"
	"github.com/FACorreiaa/go-simple-crud/internal/validation"
)

var _ PostService = (*PostServiceImpl)(nil)

// PostService is the post store. It enforces soft-delete visibility but not ownership.
type PostService interface {
	Create(ctx context.Context, ownerID int64, title, content string) (*types.Post, error)
	GetVisible(ctx context.Context, id int64) (*types.Post, error)
	ListVisible(ctx context.Context) ([]types.Post, error)
	Update(ctx context.Context, id int64, title, content string) (*types.Post, error)
	SoftDelete(ctx context.Context, id int64) error
}

type PostServiceImpl struct {
	logger *slog.Logger
	repo   PostRepo
}

func NewPostService(repo PostRepo, logger *slog.Logger) *PostServiceImpl {
	return &PostServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *PostServiceImpl) Create(ctx context.Context, ownerID int64, title, content string) (*types.Post, error) {
	ctx, span := otel.Tracer("PostService").Start(ctx, "Create", trace.WithAttributes(
		attribute.Int64("post.owner_id", ownerID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Create"))

	if err := validation.Struct(types.PostRequest{Title: title, Content: content}); err != nil {
		span.SetStatus(codes.Error, "Validation failed")
		return nil, err
	}

	p, err := s.repo.CreatePost(ctx, ownerID, title, content)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create post", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Create failed")
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	s.recordMutation(ctx, "create")
	l.InfoContext(ctx, "Post created", slog.Int64("postID", p.ID), slog.Int64("ownerID", ownerID))
	span.SetStatus(codes.Ok, "Post created")
	return p, nil
}

func (s *PostServiceImpl) GetVisible(ctx context.Context, id int64) (*types.Post, error) {
	ctx, span := otel.Tracer("PostService").Start(ctx, "GetVisible", trace.WithAttributes(
		attribute.Int64("post.id", id),
	))
	defer span.End()

	p, err := s.repo.GetVisiblePost(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "GetVisible", err)
	}
	return p, nil
}

func (s *PostServiceImpl) ListVisible(ctx context.Context) ([]types.Post, error) {
	ctx, span := otel.Tracer("PostService").Start(ctx, "ListVisible")
	defer span.End()

	posts, err := s.repo.ListVisiblePosts(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, "ListVisible", err)
	}
	span.SetAttributes(attribute.Int("posts.count", len(posts)))
	return posts, nil
}

func (s *PostServiceImpl) Update(ctx context.Context, id int64, title, content string) (*types.Post, error) {
	ctx, span := otel.Tracer("PostService").Start(ctx, "Update", trace.WithAttributes(
		attribute.Int64("post.id", id),
	))
	defer span.End()

	// a missing post reports NotFound even when the input is also invalid
	if err := validation.Struct(types.PostRequest{Title: title, Content: content}); err != nil {
		if _, lookupErr := s.repo.GetVisiblePost(ctx, id); lookupErr != nil {
			return nil, s.fail(ctx, span, "Update", lookupErr)
		}
		span.SetStatus(codes.Error, "Validation failed")
		return nil, err
	}

	p, err := s.repo.UpdatePost(ctx, id, title, content)
	if err != nil {
		return nil, s.fail(ctx, span, "Update", err)
	}

	s.recordMutation(ctx, "update")
	s.logger.InfoContext(ctx, "Post updated", slog.String("method", "Update"), slog.Int64("postID", id))
	return p, nil
}

func (s *PostServiceImpl) SoftDelete(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("PostService").Start(ctx, "SoftDelete", trace.WithAttributes(
		attribute.Int64("post.id", id),
	))
	defer span.End()

	if err := s.repo.SoftDeletePost(ctx, id); err != nil {
		return s.fail(ctx, span, "SoftDelete", err)
	}

	s.recordMutation(ctx, "delete")
	s.logger.InfoContext(ctx, "Post soft deleted", slog.String("method", "SoftDelete"), slog.Int64("postID", id))
	return nil
}

func (s *PostServiceImpl) recordMutation(ctx context.Context, operation string) {
	metrics.Get().PostMutationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

func (s *PostServiceImpl) fail(ctx context.Context, span trace.Span, method string, err error) error {
	if errors.Is(err, types.ErrNotFound) {
		span.SetStatus(codes.Error, "Post not found")
		return types.ErrNotFound
	}
	s.logger.ErrorContext(ctx, "Post operation failed", slog.String("method", method), slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, method+" failed")
	return fmt.Errorf("error in %s: %w", method, err)
}
