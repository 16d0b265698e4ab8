package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	Port           string
	LogLevel       string
	UpdateSchedule string
	BuildTimeout   time.Duration
	Workers        int
	SchemaVersion  string
	SourcesBackend string
	SourcesFile    string
	PostgresURI    string
	RedisURI       string
}

// Load reads the environment, after an optional .env file.
func Load() (*Config, error) {
	loadDotEnv()

	timeout, err := time.ParseDuration(getEnv("BUILD_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("BUILD_TIMEOUT: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("UPDATE_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("UPDATE_WORKERS: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8081"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		UpdateSchedule: getEnv("UPDATE_SCHEDULE", "@every 1m"),
		BuildTimeout:   timeout,
		Workers:        workers,
		SchemaVersion:  getEnv("SCHEMA_VERSION", "v2"),
		SourcesBackend: getEnv("SOURCES_BACKEND", BackendFile),
		SourcesFile:    getEnv("SOURCES_FILE", "sources.yaml"),
		PostgresURI:    getEnv("POSTGRES_URI", ""),
		RedisURI:       getEnv("REDIS_URI", ""),
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.BuildTimeout <= 0 {
		return fmt.Errorf("BUILD_TIMEOUT must be positive, got %s", c.BuildTimeout)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("UPDATE_WORKERS must be positive, got %d", c.Workers)
	}
	switch c.SourcesBackend {
	case BackendFile:
	case BackendPostgres:
		if c.PostgresURI == "" {
			return fmt.Errorf("POSTGRES_URI is required with SOURCES_BACKEND=%s", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown SOURCES_BACKEND %q", c.SourcesBackend)
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}
