package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. It is built once at
// startup and passed by reference; secrets never live in package state.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Derive   DeriveConfig
	Seed     SeedConfig
	Report   ReportConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

// DatabaseConfig holds the record store connection settings.
// URL is either a postgres URL (postgres://... or key=value DSN) or a
// sqlite file path. The default is an embedded single-file store.
type DatabaseConfig struct {
	URL string
}

// IsPostgres reports whether URL points at a postgres server.
func (d DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(d.URL, "postgres://") ||
		strings.HasPrefix(d.URL, "postgresql://") ||
		strings.Contains(d.URL, "host=")
}

type AuthConfig struct {
	// JWTSecret signs bearer tokens. Must be changed in production.
	JWTSecret string
	// JWTAlg is the signing algorithm (HS256 only for now).
	JWTAlg string
	// TokenTTL is the bearer token lifetime.
	TokenTTL time.Duration
	// LoginRPS / LoginBurst bound login attempts per client IP.
	LoginRPS   int
	LoginBurst int
}

// DeriveConfig holds the patient identifier derivation secret.
// The secret is process-wide, never derived from user input, and must
// not be logged or returned.
type DeriveConfig struct {
	HMACSecret string
}

// SeedConfig holds the initial admin credentials.
type SeedConfig struct {
	AdminUser string
	AdminPass string
}

type ReportConfig struct {
	// PDFEnabled toggles the document rendering engine.
	PDFEnabled bool
}

// Load reads configuration from the environment, with a .env file as
// fallback source for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("SERVER_PORT", 8080),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "app.db"),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", "super-secret-key"),
			JWTAlg:     getEnv("JWT_ALG", "HS256"),
			TokenTTL:   time.Duration(getEnvInt("JWT_EXP_MINUTES", 12*60)) * time.Minute,
			LoginRPS:   getEnvInt("LOGIN_RATE_RPS", 5),
			LoginBurst: getEnvInt("LOGIN_RATE_BURST", 10),
		},
		Derive: DeriveConfig{
			HMACSecret: getEnv("HMAC_SECRET", "intern-assistant-secret"),
		},
		Seed: SeedConfig{
			AdminUser: getEnv("ADMIN_USER", "admin"),
			AdminPass: getEnv("ADMIN_PASS", "admin123"),
		},
		Report: ReportConfig{
			PDFEnabled: getEnvBool("PDF_ENABLED", true),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
