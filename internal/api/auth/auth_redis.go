package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-simple-crud/internal/types"
)

const redisSessionPrefix = "session:"

var _ SessionStore = (*RedisSessionStore)(nil)

// RedisSessionStore keeps each session as a JSON value that expires with the session.
// Revocation deletes the key.
type RedisSessionStore struct {
	logger *slog.Logger
	rdb    redis.UniversalClient
	now    func() time.Time
}

func NewRedisSessionStore(rdb redis.UniversalClient, logger *slog.Logger) *RedisSessionStore {
	return &RedisSessionStore{
		logger: logger,
		rdb:    rdb,
		now:    time.Now,
	}
}

func sessionKey(id uuid.UUID) string {
	return redisSessionPrefix + id.String()
}

func (r *RedisSessionStore) startSpan(ctx context.Context, name string, id uuid.UUID) (context.Context, trace.Span) {
	return otel.Tracer("SessionStore").Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("session.id", id.String()),
	))
}

func (r *RedisSessionStore) CreateSession(ctx context.Context, session types.Session) error {
	ctx, span := r.startSpan(ctx, "CreateSession", session.ID)
	defer span.End()

	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("failed to create session: already expired at %s", session.ExpiresAt)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		r.logger.ErrorContext(ctx, "Failed to store session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "SET failed")
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) GetSession(ctx context.Context, id uuid.UUID) (*types.Session, error) {
	ctx, span := r.startSpan(ctx, "GetSession", id)
	defer span.End()

	data, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("session not found: %w", types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to read session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "GET failed")
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s types.Session
	if err := json.Unmarshal(data, &s); err != nil || s.ID != id {
		r.logger.WarnContext(ctx, "Discarding undecodable session", slog.Any("error", err))
		span.SetStatus(codes.Error, "Corrupt session value")
		if delErr := r.rdb.Del(ctx, sessionKey(id)).Err(); delErr != nil {
			r.logger.WarnContext(ctx, "Failed to discard session", slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("session unreadable: %w", types.ErrNotFound)
	}
	if !s.ExpiresAt.After(r.now()) {
		return nil, fmt.Errorf("session expired: %w", types.ErrNotFound)
	}
	return &s, nil
}

func (r *RedisSessionStore) TouchSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	ctx, span := r.startSpan(ctx, "TouchSession", id)
	defer span.End()

	s, err := r.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil
		}
		return err
	}
	s.LastSeenAt = at
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	// XX: a concurrent revoke must not be undone by the touch
	err = r.rdb.SetArgs(ctx, sessionKey(id), data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.ErrorContext(ctx, "Failed to touch session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "SET failed")
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) RevokeSession(ctx context.Context, id uuid.UUID) error {
	ctx, span := r.startSpan(ctx, "RevokeSession", id)
	defer span.End()

	if err := r.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		r.logger.ErrorContext(ctx, "Failed to revoke session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DEL failed")
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
