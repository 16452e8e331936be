package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// User directory backends.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth     AuthConfig
	Store    string `env:"USER_STORE, default=mongo"`
	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
}

type AuthConfig struct {
	SecretKey              string `env:"SECRET_KEY, required"`
	TokenExpirationMinutes int    `env:"TOKEN_EXPIRATION_MINUTES, default=60"`
	BcryptCost             int    `env:"BCRYPT_COST,              default=10"`
	PasswordMinLength      int    `env:"PASSWORD_MIN_LENGTH,      default=8"`
	PasswordMaxLength      int    `env:"PASSWORD_MAX_LENGTH,      default=32"`
}

// TokenTTL is the lifetime shared by issued tokens and their session records.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenExpirationMinutes) * time.Minute
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=bookhive"`
}

type PostgresConfig struct {
	URL      string `env:"DATABASE_URL"`
	MaxConns int32  `env:"DATABASE_MAX_CONNS, default=10"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMongo:
	case StorePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when USER_STORE=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("USER_STORE must be %q or %q, got %q", StoreMongo, StorePostgres, c.Store)
	}
	if c.Auth.TokenExpirationMinutes <= 0 {
		return fmt.Errorf("TOKEN_EXPIRATION_MINUTES must be positive, got %d", c.Auth.TokenExpirationMinutes)
	}
	if c.Auth.PasswordMinLength <= 0 || c.Auth.PasswordMaxLength < c.Auth.PasswordMinLength {
		return fmt.Errorf("invalid password length bounds %d..%d", c.Auth.PasswordMinLength, c.Auth.PasswordMaxLength)
	}
	return nil
}
