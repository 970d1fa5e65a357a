package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
		Swagger struct {
			Enabled bool `mapstructure:"enabled"`
		} `mapstructure:"swagger"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
		Redis struct {
			Addr     string `mapstructure:"addr"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Session    SessionConfig `mapstructure:"session"`
	Credential struct {
		BcryptCost int `mapstructure:"bcryptCost"`
	} `mapstructure:"credential"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
	RateLimit struct {
		Login struct {
			Requests int           `mapstructure:"requests"`
			Window   time.Duration `mapstructure:"window"`
		} `mapstructure:"login"`
	} `mapstructure:"rateLimit"`
}

// SessionConfig controls cookie signing and session lifetimes.
type SessionConfig struct {
	// Store selects the session backend: "postgres" or "redis".
	Store             string        `mapstructure:"store"`
	CookieName        string        `mapstructure:"cookieName"`
	HashKey           string        `mapstructure:"hashKey"`
	BlockKey          string        `mapstructure:"blockKey"`
	Secure            bool          `mapstructure:"secure"`
	MaxLifetime       time.Duration `mapstructure:"maxLifetime"`
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`
	PrincipalCacheTTL time.Duration `mapstructure:"principalCacheTTL"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// REPOSITORIES_POSTGRES_HOST overrides repositories.postgres.host, and so on.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err = config.validate(); err != nil {
		return Config{}, err
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case "postgres", "redis":
	default:
		return fmt.Errorf("invalid session store %q, expected postgres or redis", c.Session.Store)
	}
	if len(c.Session.HashKey) < 32 {
		return fmt.Errorf("session hashKey must be at least 32 bytes")
	}
	if n := len(c.Session.BlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		return fmt.Errorf("session blockKey must be empty or 16, 24 or 32 bytes")
	}
	if c.Session.MaxLifetime <= 0 || c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("session maxLifetime and idleTimeout must be positive")
	}
	return nil
}
