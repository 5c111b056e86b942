package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Supported LLM providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderVenice    = "venice"
	ProviderMock      = "mock"
)

// Supported storage backends.
const (
	StorageRedis = "redis"
	StorageFile  = "file"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	LLMProvider     string
	AnthropicAPIKey string
	VeniceAPIKey    string
	ModelName       string

	Storage  string
	RedisURL string
	DataDir  string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderAnthropic)),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		VeniceAPIKey:    os.Getenv("VENICE_API_KEY"),
		ModelName:       getEnv("MODEL_NAME", "claude-sonnet-4-20250514"),
		Storage:         strings.ToLower(getEnv("STORAGE", StorageRedis)),
		RedisURL:        getEnv("REDIS_URL", "localhost:6379"),
		DataDir:         getEnv("DATA_DIR", "./saves"),
	}

	switch cfg.LLMProvider {
	case ProviderAnthropic, ProviderVenice, ProviderMock:
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}
	switch cfg.Storage {
	case StorageRedis, StorageFile:
	default:
		return nil, fmt.Errorf("unsupported STORAGE %q", cfg.Storage)
	}
	return cfg, nil
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

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
