package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"github.com/FACorreiaa/go-simple-crud/config"
)

// CookieManager writes and reads the signed session cookie. The cookie only carries the session
// id; everything else stays in the SessionStore.
type CookieManager struct {
	name   string
	secure bool
	maxAge time.Duration
	codec  *securecookie.SecureCookie
}

func NewCookieManager(cfg config.SessionConfig) *CookieManager {
	var blockKey []byte
	if cfg.BlockKey != "" {
		blockKey = []byte(cfg.BlockKey)
	}
	codec := securecookie.New([]byte(cfg.HashKey), blockKey)
	codec.MaxAge(int(cfg.MaxLifetime.Seconds()))

	return &CookieManager{
		name:   cfg.CookieName,
		secure: cfg.Secure,
		maxAge: cfg.MaxLifetime,
		codec:  codec,
	}
}

// Write sets the session cookie for sessionID.
func (c *CookieManager) Write(w http.ResponseWriter, sessionID uuid.UUID) error {
	encoded, err := c.codec.Encode(c.name, sessionID.String())
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the session id carried by the request, or uuid.Nil when the cookie is missing,
// tampered with or too old.
func (c *CookieManager) Read(r *http.Request) uuid.UUID {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return uuid.Nil
	}
	var raw string
	if err := c.codec.Decode(c.name, cookie.Value, &raw); err != nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Clear expires the session cookie on the client.
func (c *CookieManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
