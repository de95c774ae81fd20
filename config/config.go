package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment     string
	ServerPort      string
	DBHost          string
	DBPort          int
	DBUser          string
	DBPassword      string
	DBName          string
	DBSSLMode       string
	DBMaxOpenConns  int
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	Seed            SeedConfig
}

// SeedConfig holds the accounts created on first start.
type SeedConfig struct {
	Enabled       bool
	AdminEmail    string
	AdminPassword string
	UserEmail     string
	UserPassword  string
}

// Load reads the configuration from the environment. Call godotenv.Load
// beforehand to pick up a local .env file.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		ServerPort:      getEnv("PORT", "8080"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnvInt("DB_PORT", 5432),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "gym_booking"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns:  getEnvInt("DB_MAX_OPEN_CONNS", 10),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		CORSOrigins:     getEnvList("CORS_ORIGINS"),
		Seed: SeedConfig{
			Enabled:       getEnvBool("SEED_ACCOUNTS", true),
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@gymbokning.se"),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
			UserEmail:     getEnv("SEED_USER_EMAIL", "user@gymbokning.se"),
			UserPassword:  getEnv("SEED_USER_PASSWORD", ""),
		},
	}

	if cfg.DBPassword == "" {
		return nil, errors.New("DB_PASSWORD environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}
	if cfg.Seed.Enabled && (cfg.Seed.AdminPassword == "" || cfg.Seed.UserPassword == "") {
		return nil, errors.New("SEED_ADMIN_PASSWORD and SEED_USER_PASSWORD are required when SEED_ACCOUNTS is enabled")
	}

	return cfg, nil
}

// DSN builds the lib/pq connection URL.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
