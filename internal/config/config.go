package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"orderdesk-api/internal/core/domain"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	Session  SessionConfig
	Redis    RedisConfig
	Admin    AdminConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Path     string
}

// SessionConfig holds access token configuration
type SessionConfig struct {
	Store string
	TTL   time.Duration
}

// RedisConfig holds Redis configuration, used when Session.Store is "redis"
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// AdminConfig holds the seeded admin account
type AdminConfig struct {
	Email    string
	Password string
}

// Session stores
const (
	SessionStoreDB    = "db"
	SessionStoreRedis = "redis"
)

// Database drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	database, err := loadDatabaseConfig(appMode)
	if err != nil {
		return nil, err
	}
	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: database,
		Session:  session,
		Redis:    loadRedisConfig(),
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) (DatabaseConfig, error) {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", DriverMySQL))
	if driver != DriverMySQL && driver != DriverSQLite {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql' or 'sqlite')", driver)
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "orderdesk"),
		Path:     getEnv(prefix+"DB_PATH", "orderdesk.db"),
	}, nil
}

// loadSessionConfig loads the token store settings
func loadSessionConfig() (SessionConfig, error) {
	store := strings.ToLower(getEnv("SESSION_STORE", SessionStoreDB))
	if store != SessionStoreDB && store != SessionStoreRedis {
		return SessionConfig{}, fmt.Errorf("invalid SESSION_STORE: '%s' (must be 'db' or 'redis')", store)
	}

	seconds, err := strconv.Atoi(getEnv("SESSION_TTL_SECONDS", strconv.Itoa(int(domain.SessionTTL/time.Second))))
	if err != nil || seconds <= 0 {
		return SessionConfig{}, fmt.Errorf("invalid SESSION_TTL_SECONDS: must be a positive integer")
	}

	return SessionConfig{
		Store: store,
		TTL:   time.Duration(seconds) * time.Second,
	}, nil
}

// loadRedisConfig loads Redis settings; REDIS_HOST and REDIS_PORT win over REDIS_ADDR
func loadRedisConfig() RedisConfig {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
	if host != "" && port != "" {
		addr = host + ":" + port
	}

	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tls := getEnv("REDIS_TLS", "false")

	return RedisConfig{
		Addr:     addr,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
		TLS:      strings.EqualFold(tls, "true") || tls == "1",
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		// Default production origins
		return "https://orderdesk.example.com"
	}
	return origins
}
