package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"nolatabs/pkg/domain"
)

// Server captures process level configuration.
type Server struct {
	Addr        string
	MetricsAddr string
	Environment domain.Environment
	LogLevel    slog.Level
	Database    DatabaseConfig
	Identity    IdentityConfig
	Settings    SettingsConfig
}

// DatabaseConfig configures the shared connection pool. An empty URL selects
// the in-memory stores.
type DatabaseConfig struct {
	URL             string
	Driver          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// IdentityConfig configures verification of the bearer identity assertion
// issued by the external identity provider. Exactly one of HMACSecret and
// PublicKeyPEM is expected. Issuer and Audience may only be left empty
// outside production, where an empty value skips that claim check.
type IdentityConfig struct {
	Issuer       string
	Audience     string
	HMACSecret   string
	PublicKeyPEM string
}

// SettingsConfig toggles decode strictness for incoming preference payloads.
type SettingsConfig struct {
	StrictDecode bool
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	env, err := domain.ParseEnvironment(os.Getenv("APP_ENV"))
	if err != nil {
		return Server{}, err
	}
	level, err := parseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return Server{}, err
	}
	lifetime, err := durationEnv("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return Server{}, err
	}
	maxOpen, err := intEnv("DATABASE_MAX_OPEN_CONNS", 20)
	if err != nil {
		return Server{}, err
	}
	maxIdle, err := intEnv("DATABASE_MAX_IDLE_CONNS", 5)
	if err != nil {
		return Server{}, err
	}

	cfg := Server{
		Addr:        stringEnv("NOLATABS_ADDR", ":3892"),
		MetricsAddr: stringEnv("NOLATABS_METRICS_ADDR", ":9090"),
		Environment: env,
		LogLevel:    level,
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Driver:          stringEnv("DATABASE_DRIVER", "pgx"),
			MaxOpenConns:    maxOpen,
			MaxIdleConns:    maxIdle,
			ConnMaxLifetime: lifetime,
		},
		Identity: IdentityConfig{
			Issuer:       os.Getenv("IDENTITY_ISSUER"),
			Audience:     os.Getenv("IDENTITY_AUDIENCE"),
			HMACSecret:   os.Getenv("IDENTITY_HMAC_SECRET"),
			PublicKeyPEM: os.Getenv("IDENTITY_PUBLIC_KEY_PEM"),
		},
		Settings: SettingsConfig{
			StrictDecode: os.Getenv("SETTINGS_STRICT_DECODE") == "true",
		},
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Server) Validate() error {
	switch c.Database.Driver {
	case "pgx", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Identity.HMACSecret == "" && c.Identity.PublicKeyPEM == "" {
		return fmt.Errorf("one of IDENTITY_HMAC_SECRET or IDENTITY_PUBLIC_KEY_PEM is required")
	}
	if c.Identity.HMACSecret != "" && c.Identity.PublicKeyPEM != "" {
		return fmt.Errorf("IDENTITY_HMAC_SECRET and IDENTITY_PUBLIC_KEY_PEM are mutually exclusive")
	}
	if !c.Environment.IsProduction() {
		return nil
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required in production")
	}
	if c.Identity.Issuer == "" || c.Identity.Audience == "" {
		return fmt.Errorf("IDENTITY_ISSUER and IDENTITY_AUDIENCE are required in production")
	}
	return nil
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return level, nil
}
