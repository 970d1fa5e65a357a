// Package access decides, per request, whether a session may perform a user or post operation
// and serves those operations over HTTP.
package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-simple-crud/internal/api/auth"
	"github.com/FACorreiaa/go-simple-crud/internal/api/post"
	"github.com/FACorreiaa/go-simple-crud/internal/api/user"
	"github.com/FACorreiaa/go-simple-crud/internal/types"
)

// Controller enforces authentication for mutations and owner-only updates and deletes.
// Reads need no identity.
type Controller struct {
	logger *slog.Logger
	users  user.UserService
	auth   auth.AuthService
	posts  post.PostService
}

func NewController(users user.UserService, authService auth.AuthService, posts post.PostService, logger *slog.Logger) *Controller {
	return &Controller{
		logger: logger,
		users:  users,
		auth:   authService,
		posts:  posts,
	}
}

func (c *Controller) Register(ctx context.Context, req types.RegisterRequest) (*types.PublicUser, error) {
	u, err := c.users.Register(ctx, req.UserName, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	public := u.Public()
	return &public, nil
}

func (c *Controller) Login(ctx context.Context, req types.LoginRequest) (*types.Principal, error) {
	return c.auth.Login(ctx, req.Email, req.Password)
}

func (c *Controller) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return c.auth.Logout(ctx, sessionID)
}

// CurrentUser returns types.ErrUnauthorized when the session does not resolve to a user.
func (c *Controller) CurrentUser(ctx context.Context, sessionID uuid.UUID) (*types.PublicUser, error) {
	p, err := c.authenticate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	public := p.User()
	return &public, nil
}

func (c *Controller) ListPosts(ctx context.Context) ([]types.Post, error) {
	return c.posts.ListVisible(ctx)
}

func (c *Controller) GetPost(ctx context.Context, id int64) (*types.Post, error) {
	return c.posts.GetVisible(ctx, id)
}

func (c *Controller) CreatePost(ctx context.Context, sessionID uuid.UUID, req types.PostRequest) (*types.Post, error) {
	ctx, span := otel.Tracer("AccessController").Start(ctx, "CreatePost")
	defer span.End()

	p, err := c.authenticate(ctx, sessionID)
	if err != nil {
		span.SetStatus(codes.Error, "Unauthenticated")
		return nil, err
	}
	span.SetAttributes(attribute.Int64("user.id", p.UserID))
	return c.posts.Create(ctx, p.UserID, req.Title, req.Content)
}

func (c *Controller) UpdatePost(ctx context.Context, sessionID uuid.UUID, id int64, req types.PostRequest) (*types.Post, error) {
	ctx, span := otel.Tracer("AccessController").Start(ctx, "UpdatePost", trace.WithAttributes(
		attribute.Int64("post.id", id),
	))
	defer span.End()

	if _, err := c.authorizeOwner(ctx, span, sessionID, id); err != nil {
		return nil, err
	}
	return c.posts.Update(ctx, id, req.Title, req.Content)
}

func (c *Controller) DeletePost(ctx context.Context, sessionID uuid.UUID, id int64) error {
	ctx, span := otel.Tracer("AccessController").Start(ctx, "DeletePost", trace.WithAttributes(
		attribute.Int64("post.id", id),
	))
	defer span.End()

	if _, err := c.authorizeOwner(ctx, span, sessionID, id); err != nil {
		return err
	}
	return c.posts.SoftDelete(ctx, id)
}

func (c *Controller) authenticate(ctx context.Context, sessionID uuid.UUID) (*types.Principal, error) {
	p, err := c.auth.CurrentIdentity(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error resolving session: %w", err)
	}
	if p == nil {
		return nil, types.ErrUnauthorized
	}
	return p, nil
}

// authorizeOwner resolves the caller and the visible post, and fails unless the caller owns it.
// The store's conditional update still decides a concurrent delete.
func (c *Controller) authorizeOwner(ctx context.Context, span trace.Span, sessionID uuid.UUID, id int64) (*types.Principal, error) {
	p, err := c.authenticate(ctx, sessionID)
	if err != nil {
		span.SetStatus(codes.Error, "Unauthenticated")
		return nil, err
	}
	span.SetAttributes(attribute.Int64("user.id", p.UserID))

	existing, err := c.posts.GetVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != p.UserID {
		c.logger.WarnContext(ctx, "Rejected mutation of post owned by another user",
			slog.Int64("postID", id),
			slog.Int64("ownerID", existing.OwnerID),
			slog.Int64("userID", p.UserID),
		)
		span.SetStatus(codes.Error, "Forbidden")
		return nil, types.ErrForbidden
	}
	return p, nil
}
