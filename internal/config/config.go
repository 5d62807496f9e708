package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Port     string
	Storage  string
	DBConn   string
	LogLevel string

	JWTSecret        string
	TokenTTL         time.Duration
	AuthCookieName   string
	AuthCookieSecure bool
	BcryptCost       int

	CORSAllowedOrigins []string

	DigestSchedule string
	DigestTopN     int

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables. A .env file in
// the working directory, when present, is loaded first and never overrides
// variables that are already set.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	tokenTTL, err := getEnvAsDuration("TOKEN_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	cookieSecure, err := getEnvAsBool("AUTH_COOKIE_SECURE", false)
	if err != nil {
		return nil, err
	}
	bcryptCost, err := getEnvAsInt("BCRYPT_COST", 10)
	if err != nil {
		return nil, err
	}
	digestTopN, err := getEnvAsInt("DIGEST_TOP_N", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Storage:  getEnv("STORAGE", StoragePostgres),
		DBConn:   getEnv("DB_CONN", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenTTL:         tokenTTL,
		AuthCookieName:   getEnv("AUTH_COOKIE_NAME", "jwt"),
		AuthCookieSecure: cookieSecure,
		BcryptCost:       bcryptCost,

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		DigestSchedule: getEnv("DIGEST_SCHEDULE", ""),
		DigestTopN:     digestTopN,

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", ""),
	}

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DBConn == "" {
			return nil, fmt.Errorf("DB_CONN is required")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE must be %q or %q", StoragePostgres, StorageMemory)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive")
	}
	if cfg.AuthCookieName == "" {
		return nil, fmt.Errorf("AUTH_COOKIE_NAME is required")
	}
	if cfg.DigestSchedule != "" && (cfg.SMTPHost == "" || cfg.SenderEmail == "") {
		return nil, fmt.Errorf("SMTP_HOST and SENDER_EMAIL are required when DIGEST_SCHEDULE is set")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvAsBool(key string, defaultVal bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getEnvAsDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
