package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Session store backends.
const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string  `env:"SERVER_PORT" envDefault:"8080"`
	MySQLDSN    string  `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/toko?charset=utf8mb4&parseTime=True&loc=Local"`
	LogLevel    string  `env:"LOG_LEVEL" envDefault:"info"`
	ResetDB     bool    `env:"RESET_DB" envDefault:"false"`
	SwaggerHost string  `env:"SWAGGER_HOST"`
	Redis       Redis   `envPrefix:"REDIS_"`
	Session     Session `envPrefix:"SESSION_"`
	Media       Media   `envPrefix:"MEDIA_"`
}

// Redis contains connection parameters for the cache and session store.
type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	DB       int    `env:"DB" envDefault:"0"`
	Password string `env:"PASSWORD"`
}

// Session contains session binding parameters.
type Session struct {
	Store        string        `env:"STORE" envDefault:"redis"`
	TTL          time.Duration `env:"TTL" envDefault:"24h"`
	CookieName   string        `env:"COOKIE_NAME" envDefault:"TOKO_SESSION"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

// Media contains the external media service parameters.
type Media struct {
	BaseURL  string        `env:"BASE_URL" envDefault:"http://localhost:8092"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"10m"`
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	switch cfg.Session.Store {
	case SessionStoreRedis, SessionStoreMemory:
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
	if cfg.Session.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", cfg.Session.TTL)
	}

	return &cfg, nil
}
