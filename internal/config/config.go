package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ProviderVenice    = "venice"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName    string        `env:"LOG_LEVEL" envDefault:"info"`
	LLMProvider     string        `env:"LLM_PROVIDER" envDefault:"venice"`
	ModelName       string        `env:"MODEL_NAME"`
	VeniceAPIKey    string        `env:"VENICE_API_KEY"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	RedisURL        string        `env:"REDIS_URL"` // empty disables session events
	HistoryLimit    int           `env:"HISTORY_LIMIT" envDefault:"10"`
	LLMTimeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	LogLevel slog.Level
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	if cfg.ModelName == "" {
		cfg.ModelName = defaultModel(cfg.LLMProvider)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the chosen provider has its API key.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderVenice:
		if c.VeniceAPIKey == "" {
			return errors.New("VENICE_API_KEY is required when LLM_PROVIDER is venice")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return errors.New("ANTHROPIC_API_KEY is required when LLM_PROVIDER is anthropic")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (supported: %s, %s)", c.LLMProvider, ProviderVenice, ProviderAnthropic)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLMTimeout)
	}
	return nil
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-sonnet-4-5"
	default:
		return "llama-3.3-70b"
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
