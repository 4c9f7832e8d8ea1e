// Package config reads settings from the environment, optionally seeded from
// a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	Env      string
	LogLevel string
	Port     string

	StoreBackend string
	DBURL        string
	SQLitePath   string
	CacheTTL     time.Duration

	EstimatorProvider string
	EstimatorTimeout  time.Duration
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	AnthropicAPIKey   string
	AnthropicBaseURL  string
	AnthropicModel    string

	Username     string
	PasswordHash string

	SummaryRefreshCron string
}

// Load reads .env (if present) and the environment. Variables already set in
// the environment win over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cacheTTL, err := getDuration("CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	timeout, err := getDuration("ESTIMATOR_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8080"),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "sqlite")),
		DBURL:        getEnv("DB_URL", ""),
		SQLitePath:   getEnv("SQLITE_PATH", "data/biolog.db"),
		CacheTTL:     cacheTTL,

		EstimatorProvider: strings.ToLower(getEnv("ESTIMATOR_PROVIDER", "openai")),
		EstimatorTimeout:  timeout,
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicBaseURL:  getEnv("ANTHROPIC_BASE_URL", ""),
		AnthropicModel:    getEnv("ANTHROPIC_MODEL", ""),

		Username:     getEnv("BIOLOG_USERNAME", ""),
		PasswordHash: getEnv("BIOLOG_PASSWORD_HASH", ""),

		SummaryRefreshCron: getEnv("SUMMARY_REFRESH_CRON", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case "development", "staging", "production":
	default:
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	switch c.StoreBackend {
	case "postgres":
		if c.DBURL == "" {
			return errors.New("DB_URL is required when STORE_BACKEND=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORE_BACKEND=sqlite")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be sqlite or postgres, got %q", c.StoreBackend)
	}
	switch c.EstimatorProvider {
	case "openai", "anthropic", "none":
	default:
		return fmt.Errorf("ESTIMATOR_PROVIDER must be openai, anthropic or none, got %q", c.EstimatorProvider)
	}
	if c.CacheTTL < 0 {
		return errors.New("CACHE_TTL must not be negative")
	}
	if c.SummaryRefreshCron != "" {
		if _, err := cronParser.Parse(c.SummaryRefreshCron); err != nil {
			return fmt.Errorf("SUMMARY_REFRESH_CRON: %w", err)
		}
	}
	return nil
}

// EstimatorAPIKey returns the key for the selected provider.
func (c *Config) EstimatorAPIKey() string {
	if c.EstimatorProvider == "anthropic" {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

// EstimatorBaseURL returns the base URL override for the selected provider.
func (c *Config) EstimatorBaseURL() string {
	if c.EstimatorProvider == "anthropic" {
		return c.AnthropicBaseURL
	}
	return c.OpenAIBaseURL
}

// EstimatorModel returns the model name for the selected provider.
func (c *Config) EstimatorModel() string {
	if c.EstimatorProvider == "anthropic" {
		return c.AnthropicModel
	}
	return c.OpenAIModel
}

// cronParser accepts specs with an optional leading seconds field, matching
// cron.WithSeconds-style schedules and descriptors like @daily.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// CronParser is the parser the scheduler must use for SummaryRefreshCron.
func CronParser() cron.Parser { return cronParser }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
