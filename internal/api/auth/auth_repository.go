package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-simple-crud/app/db"
	"github.com/FACorreiaa/go-simple-crud/internal/types"
)

var _ SessionStore = (*PostgresSessionStore)(nil)

// PostgresSessionStore keeps sessions in the sessions table. Revoked rows are kept.
type PostgresSessionStore struct {
	logger *slog.Logger
	db     database.Querier
}

func NewPostgresSessionStore(db database.Querier, logger *slog.Logger) *PostgresSessionStore {
	return &PostgresSessionStore{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresSessionStore) startSpan(ctx context.Context, name, operation string, id uuid.UUID) (context.Context, trace.Span) {
	return otel.Tracer("SessionStore").Start(ctx, name, trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", "sessions"),
		attribute.String("session.id", id.String()),
	))
}

func (r *PostgresSessionStore) CreateSession(ctx context.Context, session types.Session) error {
	ctx, span := r.startSpan(ctx, "CreateSession", "INSERT", session.ID)
	defer span.End()

	query := `
		INSERT INTO sessions (id, user_id, created_at, expires_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	start := time.Now()
	_, err := r.db.Exec(ctx, query, session.ID, session.UserID, session.CreatedAt, session.ExpiresAt, session.LastSeenAt)
	database.ObserveQuery(ctx, "sessions", "INSERT", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Insert failed")
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *PostgresSessionStore) GetSession(ctx context.Context, id uuid.UUID) (*types.Session, error) {
	ctx, span := r.startSpan(ctx, "GetSession", "SELECT", id)
	defer span.End()

	query := `
		SELECT id, user_id, created_at, expires_at, last_seen_at
		FROM sessions
		WHERE id = $1 AND revoked_at IS NULL AND expires_at > NOW()
	`
	var s types.Session
	start := time.Now()
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &s.LastSeenAt)
	database.ObserveQuery(ctx, "sessions", "SELECT", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session not found: %w", types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to query session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *PostgresSessionStore) TouchSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	ctx, span := r.startSpan(ctx, "TouchSession", "UPDATE", id)
	defer span.End()

	start := time.Now()
	_, err := r.db.Exec(ctx, `UPDATE sessions SET last_seen_at = $2 WHERE id = $1 AND revoked_at IS NULL`, id, at)
	database.ObserveQuery(ctx, "sessions", "UPDATE", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to touch session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update failed")
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *PostgresSessionStore) RevokeSession(ctx context.Context, id uuid.UUID) error {
	ctx, span := r.startSpan(ctx, "RevokeSession", "UPDATE", id)
	defer span.End()

	start := time.Now()
	tag, err := r.db.Exec(ctx, `UPDATE sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, id)
	database.ObserveQuery(ctx, "sessions", "UPDATE", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to revoke session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update failed")
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))
	return nil
}
