package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Auth     AuthConfig
	Storage  StorageConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// AuthConfig lists the staff accounts. Every account shares PasswordHash, a
// bcrypt hash; when it is empty the default password is hashed at startup.
type AuthConfig struct {
	AdminUsers   []string
	ManagerUsers []string
	PasswordHash string
}

// StorageConfig locates the upload archive and the shared baseline file.
type StorageConfig struct {
	BasePath     string
	BaselinePath string

	// BaselineSyncInterval re-reads the baseline periodically; zero syncs at
	// startup only.
	BaselineSyncInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	config.Auth = AuthConfig{
		AdminUsers:   getEnvSlice("ADMIN_USERS", "HR,MD"),
		ManagerUsers: getEnvSlice("MANAGER_USERS", ""),
		PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
	}

	syncInterval, err := time.ParseDuration(getEnv("BASELINE_SYNC_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BASELINE_SYNC_INTERVAL: %w", err)
	}

	config.Storage = StorageConfig{
		BasePath:             getEnv("STORAGE_PATH", "./storage"),
		BaselinePath:         getEnv("BASELINE_PATH", ""),
		BaselineSyncInterval: syncInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.UsesDatabase() && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required when DB_HOST is set")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Storage.BaselineSyncInterval < 0 {
		return fmt.Errorf("BASELINE_SYNC_INTERVAL must not be negative")
	}
	if len(c.Auth.AdminUsers) == 0 {
		return fmt.Errorf("ADMIN_USERS must name at least one account")
	}
	if c.Auth.PasswordHash == "" {
		slog.Warn("ADMIN_PASSWORD_HASH is not set, staff accounts use the default password")
	}
	return nil
}

// UsesDatabase reports whether a PostgreSQL host is configured. Without one the
// collection lives in memory for the lifetime of the process.
func (c *Config) UsesDatabase() bool {
	return c.Database.Host != ""
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
