package user

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

// emailConstraint is the unique constraint on users.email.
const emailConstraint = "users_email_key"

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo defines the contract for user data persistence.
type UserRepo interface {
	// CreateUser inserts a user and returns it with its assigned id.
	// Returns types.ErrDuplicateEmail when the email is already taken.
	CreateUser(ctx context.Context, userName, email, passwordHash string) (*types.User, error)
	// GetUserByEmail returns types.ErrNotFound when no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	// GetUserByID returns types.ErrNotFound when the id is unknown.
	GetUserByID(ctx context.Context, id int64) (*types.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type PostgresUserRepo struct {
	logger *slog.Logger
	db     database.Querier
}

func NewPostgresUserRepo(db database.Querier, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresUserRepo) CreateUser(ctx context.Context, userName, email, passwordHash string) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	query := `
		INSERT INTO users (user_name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	user := types.User{UserName: userName, Email: email, PasswordHash: passwordHash}

	start := time.Now()
	err := r.db.QueryRow(ctx, query, userName, email, passwordHash).Scan(&user.ID)
	database.ObserveQuery(ctx, "users", "INSERT", start, err)
	if err != nil {
		span.RecordError(err)
		if database.IsUniqueViolation(err, emailConstraint) {
			span.SetStatus(codes.Error, "Email already registered")
			return nil, fmt.Errorf("failed to create user: %w", errors.Join(types.ErrDuplicateEmail, err))
		}
		r.logger.ErrorContext(ctx, "Failed to insert user", slog.Any("error", err))
		span.SetStatus(codes.Error, "Insert failed")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	span.SetAttributes(attribute.Int64("db.user.id", user.ID))
	return &user, nil
}

func (r *PostgresUserRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetUserByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	return r.getUser(ctx, span, `SELECT id, user_name, email, password_hash FROM users WHERE email = $1`, email)
}

func (r *PostgresUserRepo) GetUserByID(ctx context.Context, id int64) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
		attribute.Int64("db.user.id", id),
	))
	defer span.End()

	return r.getUser(ctx, span, `SELECT id, user_name, email, password_hash FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepo) getUser(ctx context.Context, span trace.Span, query string, arg any) (*types.User, error) {
	var user types.User
	start := time.Now()
	err := r.db.QueryRow(ctx, query, arg).Scan(&user.ID, &user.UserName, &user.Email, &user.PasswordHash)
	database.ObserveQuery(ctx, "users", "SELECT", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to query user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *PostgresUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "EmailExists", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	var exists bool
	start := time.Now()
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	database.ObserveQuery(ctx, "users", "SELECT", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to check email", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}
