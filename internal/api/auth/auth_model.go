package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-simple-crud/internal/types"
)

// SessionStore persists server-side sessions. Implementations: PostgresSessionStore, RedisSessionStore.
type SessionStore interface {
	// CreateSession stores a new session.
	CreateSession(ctx context.Context, session types.Session) error
	// GetSession returns types.ErrNotFound for unknown, revoked or expired sessions.
	GetSession(ctx context.Context, id uuid.UUID) (*types.Session, error)
	// TouchSession records activity on a live session.
	TouchSession(ctx context.Context, id uuid.UUID, at time.Time) error
	// RevokeSession invalidates a session. Revoking an unknown or revoked session is not an error.
	RevokeSession(ctx context.Context, id uuid.UUID) error
}

// UserFinder resolves users for the authenticator.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*types.User, error)
	FindByID(ctx context.Context, id int64) (*types.User, error)
}

// PasswordVerifier checks a raw password against a stored hash. Hash is called once, at construction,
// to build the hash unknown emails are verified against.
type PasswordVerifier interface {
	Verify(rawPassword, hash string) bool
	Hash(rawPassword string) (string, error)
}
