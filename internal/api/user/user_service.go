package user

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

var _ UserService = (*UserServiceImpl)(nil)

// UserService is the user directory: it owns user records and resolves identities.
type UserService interface {
	Register(ctx context.Context, userName, email, rawPassword string) (*types.User, error)
	FindByEmail(ctx context.Context, email string) (*types.User, error)
	FindByID(ctx context.Context, id int64) (*types.User, error)
}

// PasswordHasher hashes raw passwords before they are stored.
type PasswordHasher interface {
	Hash(rawPassword string) (string, error)
}

// UserServiceImpl provides the implementation for UserService.
type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
	hasher PasswordHasher
}

// NewUserService creates a new user service instance.
func NewUserService(repo UserRepo, hasher PasswordHasher, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger: logger,
		repo:   repo,
		hasher: hasher,
	}
}

// Register validates the input, rejects taken emails and stores the new user with a hashed password.
func (s *UserServiceImpl) Register(ctx context.Context, userName, email, rawPassword string) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "Register")
	defer span.End()

	l := s.logger.With(slog.String("method", "Register"))
	l.DebugContext(ctx, "Registering user")

	user, err := s.register(ctx, l, userName, email, rawPassword)
	outcome := "success"
	switch {
	case err == nil:
		span.SetAttributes(attribute.Int64("user.id", user.ID))
		span.SetStatus(codes.Ok, "User registered")
	case errors.Is(err, types.ErrValidation):
		outcome = "invalid"
		span.SetStatus(codes.Error, "Validation failed")
	case errors.Is(err, types.ErrDuplicateEmail):
		outcome = "duplicate_email"
		span.SetStatus(codes.Error, "Duplicate email")
	default:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "Registration failed")
	}
	metrics.Get().RegisterRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	return user, err
}

func (s *UserServiceImpl) register(ctx context.Context, l *slog.Logger, userName, email, rawPassword string) (*types.User, error) {
	req := types.RegisterRequest{UserName: userName, Email: email, Password: rawPassword}
	if err := validation.Struct(req); err != nil {
		l.InfoContext(ctx, "Registration input rejected", slog.Any("error", err))
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		l.ErrorContext(ctx, "Failed to check email", slog.Any("error", err))
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		l.InfoContext(ctx, "Email already registered")
		return nil, types.ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(rawPassword)
	if err != nil {
		l.InfoContext(ctx, "Password rejected by hasher", slog.Any("error", err))
		return nil, err
	}

	// the unique constraint still decides if a concurrent registration won the race
	user, err := s.repo.CreateUser(ctx, userName, email, hash)
	if err != nil {
		if errors.Is(err, types.ErrDuplicateEmail) {
			l.InfoContext(ctx, "Email registered concurrently")
			return nil, types.ErrDuplicateEmail
		}
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	l.InfoContext(ctx, "User registered", slog.Int64("userID", user.ID))
	return user, nil
}

// FindByEmail returns types.ErrNotFound when no user has that email.
func (s *UserServiceImpl) FindByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "FindByEmail")
	defer span.End()

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, s.lookupError(ctx, span, "FindByEmail", err)
	}
	return user, nil
}

// FindByID returns types.ErrNotFound when the id is unknown.
func (s *UserServiceImpl) FindByID(ctx context.Context, id int64) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "FindByID", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, span, "FindByID", err)
	}
	return user, nil
}

func (s *UserServiceImpl) lookupError(ctx context.Context, span trace.Span, method string, err error) error {
	if errors.Is(err, types.ErrNotFound) {
		span.SetStatus(codes.Error, "User not found")
		return types.ErrNotFound
	}
	s.logger.ErrorContext(ctx, "Failed to fetch user", slog.String("method", method), slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, "Lookup failed")
	return fmt.Errorf("error fetching user: %w", err)
}
