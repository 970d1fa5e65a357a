package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-simple-crud/app/observability/metrics"
	"github.com/FACorreiaa/go-simple-crud/config"
	"github.com/FACorreiaa/go-simple-crud/internal/types"
)

// touchInterval limits how often a live session's last_seen_at is written.
const touchInterval = time.Minute

// absentUserPassword is hashed at the configured cost so a login for an unknown email spends
// as long in bcrypt as a wrong password does.
const absentUserPassword = "absent-user-placeholder"

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService is the session authenticator.
type AuthService interface {
	// Login returns types.ErrAuthenticationFailed for an unknown email and for a wrong password alike.
	Login(ctx context.Context, email, rawPassword string) (*types.Principal, error)
	// Logout is idempotent.
	Logout(ctx context.Context, sessionID uuid.UUID) error
	// CurrentIdentity returns nil without error when the session is absent, expired or idle.
	CurrentIdentity(ctx context.Context, sessionID uuid.UUID) (*types.Principal, error)
}

type AuthServiceImpl struct {
	logger      *slog.Logger
	users       UserFinder
	verifier    PasswordVerifier
	store       SessionStore
	absentHash  string
	userCache   *cache.Cache
	maxLifetime time.Duration
	idleTimeout time.Duration
	now         func() time.Time
}

func NewAuthService(users UserFinder, verifier PasswordVerifier, store SessionStore, cfg config.SessionConfig, logger *slog.Logger) *AuthServiceImpl {
	cacheTTL := cfg.PrincipalCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = cache.NoExpiration
	}
	absentHash, err := verifier.Hash(absentUserPassword)
	if err != nil {
		logger.Warn("Failed to precompute placeholder password hash", slog.Any("error", err))
	}
	return &AuthServiceImpl{
		logger:      logger,
		users:       users,
		verifier:    verifier,
		store:       store,
		absentHash:  absentHash,
		userCache:   cache.New(cacheTTL, 10*time.Minute),
		maxLifetime: cfg.MaxLifetime,
		idleTimeout: cfg.IdleTimeout,
		now:         time.Now,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, rawPassword string) (*types.Principal, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"))
	principal, err := s.login(ctx, l, email, rawPassword)

	outcome := "success"
	switch {
	case err == nil:
		span.SetAttributes(attribute.Int64("user.id", principal.UserID))
		span.SetStatus(codes.Ok, "Logged in")
	case errors.Is(err, types.ErrAuthenticationFailed):
		outcome = "rejected"
		span.SetStatus(codes.Error, "Authentication failed")
	default:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "Login failed")
	}
	metrics.Get().LoginAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	return principal, err
}

func (s *AuthServiceImpl) login(ctx context.Context, l *slog.Logger, email, rawPassword string) (*types.Principal, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			s.verifier.Verify(rawPassword, s.absentHash)
			l.InfoContext(ctx, "Login rejected")
			return nil, types.ErrAuthenticationFailed
		}
		l.ErrorContext(ctx, "Failed to look up user", slog.Any("error", err))
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	if !s.verifier.Verify(rawPassword, user.PasswordHash) {
		l.InfoContext(ctx, "Login rejected")
		return nil, types.ErrAuthenticationFailed
	}

	now := s.now()
	session := types.Session{
		ID:         uuid.New(),
		UserID:     user.ID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.maxLifetime),
		LastSeenAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		l.ErrorContext(ctx, "Failed to create session", slog.Any("error", err))
		return nil, fmt.Errorf("error creating session: %w", err)
	}
	s.userCache.SetDefault(userCacheKey(user.ID), *user)

	principal := types.NewPrincipal(*user, session)
	l.InfoContext(ctx, "User logged in", slog.Int64("userID", user.ID))
	return &principal, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID uuid.UUID) error {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Logout")
	defer span.End()

	if sessionID == uuid.Nil {
		return nil
	}
	if err := s.store.RevokeSession(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to revoke session", slog.String("method", "Logout"), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Revoke failed")
		return fmt.Errorf("error revoking session: %w", err)
	}
	return nil
}

func (s *AuthServiceImpl) CurrentIdentity(ctx context.Context, sessionID uuid.UUID) (*types.Principal, error) {
	if sessionID == uuid.Nil {
		return nil, nil
	}
	ctx, span := otel.Tracer("AuthService").Start(ctx, "CurrentIdentity", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CurrentIdentity"))

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Session lookup failed")
		return nil, fmt.Errorf("error loading session: %w", err)
	}

	now := s.now()
	if !now.Before(session.ExpiresAt) || now.Sub(session.LastSeenAt) > s.idleTimeout {
		l.DebugContext(ctx, "Session expired or idle, revoking")
		if err := s.store.RevokeSession(ctx, sessionID); err != nil {
			l.WarnContext(ctx, "Failed to revoke stale session", slog.Any("error", err))
		}
		return nil, nil
	}

	user, err := s.cachedUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "User lookup failed")
		return nil, fmt.Errorf("error loading session user: %w", err)
	}

	if now.Sub(session.LastSeenAt) >= touchInterval {
		if err := s.store.TouchSession(ctx, sessionID, now); err != nil {
			l.WarnContext(ctx, "Failed to record session activity", slog.Any("error", err))
		}
	}

	principal := types.NewPrincipal(user, *session)
	return &principal, nil
}

// cachedUser serves user records from the in-process cache; users are never mutated after
// registration, so entries only expire.
func (s *AuthServiceImpl) cachedUser(ctx context.Context, id int64) (types.User, error) {
	key := userCacheKey(id)
	if cached, ok := s.userCache.Get(key); ok {
		return cached.(types.User), nil
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	s.userCache.SetDefault(key, *user)
	return *user, nil
}

func userCacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
