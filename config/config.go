package config

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Config holds the configuration for a keywordize store
type Config struct {
	Storage StorageConfig
	Log     LogConfig
}

// StorageConfig selects and parameterizes the storage backend
type StorageConfig struct {
	Backend        string
	SQLitePath     string
	SQLiteDriver   string
	PostgresDSN    string
	PostgresSchema string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
	JSON  bool
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:        GetStringEnv("KEYWORDIZE_BACKEND", "sqlite"),
			SQLitePath:     GetStringEnv("KEYWORDIZE_SQLITE_PATH", "keywordize.db"),
			SQLiteDriver:   GetStringEnv("KEYWORDIZE_SQLITE_DRIVER", "sqlite"),
			PostgresDSN:    GetStringEnv("KEYWORDIZE_POSTGRES_DSN", ""),
			PostgresSchema: GetStringEnv("KEYWORDIZE_POSTGRES_SCHEMA", "keywordize"),
		},
		Log: LogConfig{
			Level: GetStringEnv("KEYWORDIZE_LOG_LEVEL", "info"),
			JSON:  GetBoolEnv("KEYWORDIZE_LOG_JSON", false),
		},
	}
}

// NewLogger builds the root logger entry described by cfg. An unknown level
// falls back to info.
func NewLogger(cfg LogConfig) *logrus.Entry {
	logger := logrus.New()
	if cfg.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logrus.NewEntry(logger)
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
