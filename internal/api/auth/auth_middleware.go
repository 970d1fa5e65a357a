package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const SessionIDKey contextKey = "sessionID"

// LoadSession puts the session id from the request cookie into the context. Requests without a
// valid cookie carry uuid.Nil; deciding whether that is acceptable is left to the handlers.
func LoadSession(cookies *CookieManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), SessionIDKey, cookies.Read(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionIDFromContext returns the session id loaded by LoadSession, or uuid.Nil.
func GetSessionIDFromContext(ctx context.Context) uuid.UUID {
	id, ok := ctx.Value(SessionIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
