package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	t.Run("EmbeddedDefaults", func(t *testing.T) {
		cfg, err := InitConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.HTTPPort)
		assert.Equal(t, 60*time.Second, cfg.Server.Timeout)
		assert.Equal(t, "postgres", cfg.Session.Store)
		assert.Equal(t, "SESSION", cfg.Session.CookieName)
		assert.Equal(t, 12*time.Hour, cfg.Session.MaxLifetime)
		assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
		assert.Equal(t, 10, cfg.Credential.BcryptCost)
		assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:3000")
		assert.Equal(t, 5, cfg.RateLimit.Login.Requests)
	})

	t.Run("EnvOverride", func(t *testing.T) {
		t.Setenv("REPOSITORIES_POSTGRES_HOST", "db.internal")
		t.Setenv("SESSION_STORE", "redis")

		cfg, err := InitConfig()
		require.NoError(t, err)
		assert.Equal(t, "db.internal", cfg.Repositories.Postgres.Host)
		assert.Equal(t, "redis", cfg.Session.Store)
	})

	t.Run("InvalidStore", func(t *testing.T) {
		t.Setenv("SESSION_STORE", "memcached")

		_, err := InitConfig()
		assert.Error(t, err)
	})
}
