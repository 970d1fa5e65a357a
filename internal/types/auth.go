package types

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record behind a session cookie.
type Session struct {
	ID         uuid.UUID `json:"id"`
	UserID     int64     `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Principal is the identity derived from a user record and a live session. It is built at
// authentication time and is not persisted.
type Principal struct {
	UserID    int64
	UserName  string
	Email     string
	SessionID uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewPrincipal derives the identity of user u authenticated through session s.
func NewPrincipal(u User, s Session) Principal {
	return Principal{
		UserID:    u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		SessionID: s.ID,
		IssuedAt:  s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

// User returns the outbound view of the authenticated user.
func (p Principal) User() PublicUser {
	return PublicUser{ID: p.UserID, UserName: p.UserName, Email: p.Email}
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"secret1"`
}
