package config

import (
	"fmt"
	"os"
	"time"
)

// Server captures process-level configuration loaded from the environment.
type Server struct {
	Addr           string
	DatabaseURL    string
	Redis          RedisConfig
	JWTSigningKey  string
	TokenTTL       time.Duration
	MigrationsPath string

	// Federation settings for externally issued identity tokens.
	FederationKey    string
	FederationIssuer string
}

// RedisConfig holds connection settings for the optional Redis revocation list.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
// DATABASE_URL is the only required variable; everything else has a dev default.
func FromEnv() (Server, error) {
	addr := os.Getenv("PANTRY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return Server{}, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Dev default - must be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	tokenTTL := 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return Server{}, fmt.Errorf("invalid TOKEN_TTL %q: %w", raw, err)
		}
		tokenTTL = parsed
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}

	federationKey := os.Getenv("FEDERATION_SIGNING_KEY")
	if federationKey == "" {
		// Shared-key federation in dev: the provider signs with our own key.
		federationKey = jwtSigningKey
	}

	return Server{
		Addr:           addr,
		DatabaseURL:    databaseURL,
		Redis:          redisFromEnv(),
		JWTSigningKey:  jwtSigningKey,
		TokenTTL:       tokenTTL,
		MigrationsPath: migrationsPath,

		FederationKey:    federationKey,
		FederationIssuer: os.Getenv("FEDERATION_ISSUER"),
	}, nil
}

func redisFromEnv() RedisConfig {
	return RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}
