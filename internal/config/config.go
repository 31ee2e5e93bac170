package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config keeps runtime settings for the API server.
type Config struct {
	Env            string
	Port           string
	DatabaseURL    string
	DatabaseName   string
	JWTSecret      []byte
	TokenTTL       time.Duration
	BcryptCost     int
	AllowedOrigins []string
	RedisAddr      string
	HealthInterval time.Duration

	// GeneratedSecret is set when no JWT_SECRET was supplied in development.
	GeneratedSecret bool
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	env := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				return v
			}
		}
		return ""
	}

	cfg := Config{
		Env:            strings.ToLower(env("APP_ENV", "NODE_ENV")),
		Port:           env("PORT"),
		DatabaseURL:    env("MONGO_URI", "DATABASE_URL"),
		DatabaseName:   env("MONGO_DB"),
		JWTSecret:      []byte(env("JWT_SECRET")),
		TokenTTL:       parseHours(env("TOKEN_TTL_HOURS")),
		RedisAddr:      env("REDIS_ADDR"),
		HealthInterval: parseSeconds(env("HEALTH_CHECK_INTERVAL_SECONDS")),
	}

	if cfg.Env == "" {
		cfg.Env = EnvDevelopment
	}
	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return cfg, fmt.Errorf("unknown environment %q", cfg.Env)
	}
	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	if cfg.DatabaseName == "" {
		cfg.DatabaseName = "task_management"
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.HealthInterval == 0 {
		cfg.HealthInterval = 30 * time.Second
	}

	cost, err := parseCost(env("BCRYPT_COST"))
	if err != nil {
		return cfg, err
	}
	cfg.BcryptCost = cost

	if cfg.IsProduction() {
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("MONGO_URI or DATABASE_URL is required in production")
		}
		if len(cfg.JWTSecret) == 0 {
			return cfg, fmt.Errorf("JWT_SECRET is required in production")
		}
		origin := env("FRONTEND_URL")
		if origin == "" {
			return cfg, fmt.Errorf("FRONTEND_URL is required in production")
		}
		cfg.AllowedOrigins = []string{origin}
		return cfg, nil
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "task_manager.db"
	}
	cfg.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	if origin := env("FRONTEND_URL"); origin != "" {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
	}
	if len(cfg.JWTSecret) == 0 {
		secret, err := randomSecret()
		if err != nil {
			return cfg, err
		}
		cfg.JWTSecret = secret
		cfg.GeneratedSecret = true
	}
	return cfg, nil
}

func randomSecret() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate jwt secret: %w", err)
	}
	return []byte(hex.EncodeToString(buf)), nil
}

func parseHours(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

func parseSeconds(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// parseCost returns 0 for "use the hasher default".
func parseCost(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	cost, err := strconv.Atoi(raw)
	if err != nil || cost < 4 || cost > 31 {
		return 0, fmt.Errorf("invalid BCRYPT_COST %q", raw)
	}
	return cost, nil
}
