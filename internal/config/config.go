// Package config provides configuration management for hypecycle.
// It loads settings from environment variables with the HYPECYCLE_ prefix
// and provides sensible defaults for all configuration options. Scoring
// thresholds can additionally be overridden from a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/techscope/hypecycle/internal/phase"
)

// Config holds all configuration settings for the hypecycle application.
type Config struct {
	Storage    StorageConfig
	Collectors CollectorsConfig
	Analysis   AnalysisConfig
	Logging    LoggingConfig
}

// StorageConfig contains database and storage configuration.
type StorageConfig struct {
	StorageEngine string // Storage engine type: sqlite, postgres (default: sqlite)
	DataPath      string // Path to data directory for sqlite (default: ./data)
	PostgresDSN   string // Connection string when StorageEngine is postgres
}

// CollectorsConfig contains upstream data source configuration.
type CollectorsConfig struct {
	SemanticScholarAPIKey string  // Semantic Scholar API key (optional, raises rate limits)
	PatentsViewAPIKey     string  // PatentsView API key
	NewsAPIKey            string  // NewsAPI key
	RedditUserAgent       string  // User agent sent to the Reddit API
	RequestsPerSecond     float64 // Upstream request rate (default: 1.0)
	RequestBurst          int     // Rate limiter burst size (default: 3)
	MaxPagesPerQuery      int     // Pagination cap per collector query (default: 10)
}

// AnalysisConfig contains analysis pipeline configuration.
type AnalysisConfig struct {
	ThresholdsPath string // YAML file overriding rule thresholds (optional)
}

// LoggingConfig contains log output configuration.
type LoggingConfig struct {
	Level  string // Log level: debug, info, warn, error (default: info)
	Format string // Log format: text, json (default: text)
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the HYPECYCLE_ prefix.
func LoadConfig() (*Config, error) {
	return &Config{
		Storage: StorageConfig{
			StorageEngine: getEnv("HYPECYCLE_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("HYPECYCLE_DATA_PATH", "./data"),
			PostgresDSN:   getEnv("HYPECYCLE_POSTGRES_DSN", ""),
		},
		Collectors: CollectorsConfig{
			SemanticScholarAPIKey: getEnv("HYPECYCLE_SEMANTIC_SCHOLAR_API_KEY", ""),
			PatentsViewAPIKey:     getEnv("HYPECYCLE_PATENTSVIEW_API_KEY", ""),
			NewsAPIKey:            getEnv("HYPECYCLE_NEWSAPI_KEY", ""),
			RedditUserAgent:       getEnv("HYPECYCLE_REDDIT_USER_AGENT", "hypecycle/1.0"),
			RequestsPerSecond:     getEnvFloat("HYPECYCLE_REQUESTS_PER_SECOND", 1.0),
			RequestBurst:          getEnvInt("HYPECYCLE_REQUEST_BURST", 3),
			MaxPagesPerQuery:      getEnvInt("HYPECYCLE_MAX_PAGES_PER_QUERY", 10),
		},
		Analysis: AnalysisConfig{
			ThresholdsPath: getEnv("HYPECYCLE_THRESHOLDS_PATH", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("HYPECYCLE_LOG_LEVEL", "info"),
			Format: getEnv("HYPECYCLE_LOG_FORMAT", "text"),
		},
	}, nil
}

// LoadThresholds returns the rule thresholds, starting from the defaults
// and overlaying the YAML file at path when one is configured. An empty
// path means defaults only.
func LoadThresholds(path string) (phase.Thresholds, error) {
	thresholds := phase.DefaultThresholds()
	if path == "" {
		return thresholds, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return thresholds, fmt.Errorf("config: failed to read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(data, &thresholds); err != nil {
		return thresholds, fmt.Errorf("config: failed to parse thresholds file: %w", err)
	}
	return thresholds, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. If the environment variable exists but cannot be parsed as an
// integer, it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
