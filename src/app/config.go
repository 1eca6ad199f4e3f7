package app

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type AppConfig struct {
	// =========================== REQUIRED ===========================

	// Database configuration (required)
	DSN *string
	// GitHub token allowed to create discussions on the target repository (required)
	GitHubToken *string
	// Node ID of the discussion category new threads are created in (required)
	DiscussionCategoryID *string

	// =========================== OPTIONAL ===========================

	// Ledger backend, postgres or sqlite
	DBDriver *string

	// Redis configuration, empty means an in-process unlock lock
	RedisAddr *string

	// Shared secret of the unlock triggers. Empty rejects every trigger.
	UnlockSecret *string

	// Discussion configuration
	TargetRepository *string
	GitHubGraphQLURL *string

	// Challenge content and schedule
	ContentDir   *string
	ScheduleFile *string

	// Unlock timing
	DiscussionTimeout *time.Duration
	LockTTL           *time.Duration
	LockWait          *time.Duration

	// Logging configuration
	LogLevel *string

	// HTTP server configuration
	Port        *string
	Host        *string
	Environment *string

	// CORS configuration
	AllowOrigins *[]string

	// Migration configuration
	MigrationPath *string
}

// NewAppConfig reads the process environment and exits on invalid configuration
func NewAppConfig() *AppConfig {
	config, err := loadAppConfig(os.Getenv)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return config
}

func loadAppConfig(getenv func(string) string) (*AppConfig, error) {
	config := &AppConfig{}

	// Load required configuration
	if err := loadRequiredConfig(config, getenv); err != nil {
		return nil, err
	}

	// Load optional configuration with defaults
	if err := loadOptionalConfig(config, getenv); err != nil {
		return nil, err
	}

	return config, nil
}

// loadRequiredConfig loads all required configuration values and fails fast if any are missing
func loadRequiredConfig(config *AppConfig, getenv func(string) string) error {
	for _, field := range []struct {
		key    string
		target **string
	}{
		{"DB_URL", &config.DSN},
		{"GITHUB_TOKEN", &config.GitHubToken},
		{"DISCUSSION_CATEGORY_ID", &config.DiscussionCategoryID},
	} {
		value := getenv(field.key)
		if value == "" {
			return fmt.Errorf("REQUIRED: %s not set in environment", field.key)
		}
		*field.target = &value
	}

	// CORS origins (required in production, optional in development)
	return loadCORSConfig(config, getenv)
}

// loadOptionalConfig loads all optional configuration values with sensible defaults
func loadOptionalConfig(config *AppConfig, getenv func(string) string) error {
	driver := strings.ToLower(getEnvWithDefault(getenv, "DB_DRIVER", DriverPostgres))
	if driver != DriverPostgres && driver != DriverSQLite {
		return fmt.Errorf("invalid DB_DRIVER %q, expected %s or %s", driver, DriverPostgres, DriverSQLite)
	}
	config.DBDriver = &driver

	redisAddr := getenv("REDIS_URL")
	config.RedisAddr = &redisAddr

	unlockSecret := getenv("UNLOCK_SECRET")
	config.UnlockSecret = &unlockSecret

	targetRepository := getEnvWithDefault(getenv, "TARGET_REPOSITORY", "block/goose")
	config.TargetRepository = &targetRepository

	graphQLURL := getenv("GITHUB_GRAPHQL_URL")
	config.GitHubGraphQLURL = &graphQLURL

	contentDir := getEnvWithDefault(getenv, "CONTENT_DIR", "challenges")
	config.ContentDir = &contentDir

	scheduleFile := getenv("SCHEDULE_FILE")
	config.ScheduleFile = &scheduleFile

	// Durations are given in seconds
	var err error
	if config.DiscussionTimeout, err = getSeconds(getenv, "DISCUSSION_TIMEOUT", 30); err != nil {
		return err
	}
	if config.LockTTL, err = getSeconds(getenv, "LOCK_TTL", 120); err != nil {
		return err
	}
	if config.LockWait, err = getSeconds(getenv, "LOCK_WAIT", 45); err != nil {
		return err
	}

	// HTTP server port (default: 8080)
	port := getEnvWithDefault(getenv, "PORT", "8080")
	config.Port = &port

	host := getEnvWithDefault(getenv, "HOST", "localhost:"+port)
	config.Host = &host

	// Log level (default: debug)
	// Available levels: "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"
	logLevel := getEnvWithDefault(getenv, "LOG_LEVEL", "debug")
	config.LogLevel = &logLevel

	// Migration path defaults to the directory of the selected driver
	migrationPath := getEnvWithDefault(getenv, "MIGRATION_PATH", "file://migrations/"+driver)
	config.MigrationPath = &migrationPath

	return nil
}

// loadCORSConfig handles CORS origins configuration with environment-specific behavior
func loadCORSConfig(config *AppConfig, getenv func(string) string) error {
	environment := getEnvWithDefault(getenv, "ENVIRONMENT", "production")
	config.Environment = &environment

	allowOriginsStr := getenv("ALLOW_ORIGINS")
	var allowOrigins []string

	if allowOriginsStr != "" {
		// Parse comma-separated origins
		for _, origin := range strings.Split(allowOriginsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowOrigins = append(allowOrigins, origin)
			}
		}
	} else if isDevelopment(environment) {
		// Default to the local frontend in development
		allowOrigins = []string{"http://localhost:3000"}
	} else {
		return fmt.Errorf("REQUIRED: ALLOW_ORIGINS not set in environment (required in production)")
	}

	config.AllowOrigins = &allowOrigins
	return nil
}

func isDevelopment(environment string) bool {
	return environment == "development" || environment == "dev"
}

func getSeconds(getenv func(string) string, key string, defaultSeconds int) (*time.Duration, error) {
	d := time.Duration(defaultSeconds) * time.Second
	raw := getenv(key)
	if raw == "" {
		return &d, nil
	}

	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return nil, fmt.Errorf("invalid %s value %q, expected a positive number of seconds", key, raw)
	}
	d = time.Duration(seconds) * time.Second
	return &d, nil
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}
