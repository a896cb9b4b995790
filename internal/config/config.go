// Package config reads the application configuration from environment variables.
// Every value is optional and falls back to a development default.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	JWT       JWTConfig
	MongoDB   MongoDBConfig
	Postgres  PostgresConfig
	Email     EmailConfig
	Google    GoogleOAuthConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds the HTTP server configuration.
// NodeEnv keeps the variable name of the deployment tooling (NODE_ENV).
type ServerConfig struct {
	NodeEnv   string
	Port      int
	APIPrefix string
	LogLevel  string
}

// JWTConfig holds the secret and the token lifetime, e.g. "7d" or "12h".
type JWTConfig struct {
	Secret     string
	Expiration string
}

// MongoDBConfig holds the document store connection string
type MongoDBConfig struct {
	URI string
}

// PostgresConfig holds the relational store configuration
type PostgresConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

// EmailConfig holds the outgoing mail configuration.
// Password is used as the API key of the mail provider.
type EmailConfig struct {
	Service  string
	User     string
	Password string
	From     string
	VerifyMX bool
}

// GoogleOAuthConfig holds the Google OAuth client configuration
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// RateLimitConfig holds the fixed window rate limit configuration
type RateLimitConfig struct {
	WindowMs int
	Max      int
}

const (
	fifteenMinutes  = 900000
	defaultRateMax  = 100
	developmentMode = "development"
	productionMode  = "production"
)

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			NodeEnv:   getEnv("NODE_ENV", developmentMode),
			Port:      getEnvAsInt("PORT", 3000),
			APIPrefix: getEnv("API_PREFIX", "/api"),
			LogLevel:  getEnv("LOG_LEVEL", "INFO"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "default_secret_for_development"),
			Expiration: getEnv("JWT_EXPIRATION", "7d"),
		},
		MongoDB: MongoDBConfig{
			URI: getEnv("MONGODB_URI", "mongodb://localhost:27017/plan_pleno"),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			Username: getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "plan_pleno"),
		},
		Email: EmailConfig{
			Service:  getEnv("EMAIL_SERVICE", "gmail"),
			User:     getEnv("EMAIL_USER", ""),
			Password: getEnv("EMAIL_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", ""),
			VerifyMX: getEnvAsBool("EMAIL_VERIFY_MX", false),
		},
		Google: GoogleOAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			CallbackURL:  getEnv("GOOGLE_CALLBACK_URL", "http://localhost:3000/api/auth/google/callback"),
		},
		RateLimit: RateLimitConfig{
			WindowMs: getEnvAsInt("RATE_LIMIT_WINDOW_MS", fifteenMinutes),
			Max:      getEnvAsInt("RATE_LIMIT_MAX", defaultRateMax),
		},
	}
}

// IsDevelopment reports whether the server runs in development mode
func (c *ServerConfig) IsDevelopment() bool {
	return c.NodeEnv == developmentMode
}

// IsProduction reports whether the server runs in production mode
func (c *ServerConfig) IsProduction() bool {
	return c.NodeEnv == productionMode
}

// Addr returns the listen address for the HTTP server
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// DSN returns the PostgreSQL connection string
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.Username, c.Password, c.Database,
	)
}

// Window returns the rate limit window as a duration
func (c *RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

// ExpirationDuration parses the token lifetime. Besides everything time.ParseDuration
// understands, a plain number of days with a "d" suffix is accepted.
func (c *JWTConfig) ExpirationDuration() (time.Duration, error) {
	value := strings.TrimSpace(c.Expiration)
	if days, found := strings.CutSuffix(value, "d"); found {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid jwt expiration %q", c.Expiration)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid jwt expiration %q", c.Expiration)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
