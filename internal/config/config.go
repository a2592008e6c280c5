package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported LLM providers.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderVenice    = "venice"
	ProviderOllama    = "ollama"
)

// Supported session stores.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel    slog.Level

	LLMProvider     string        `env:"LLM_PROVIDER" envDefault:"gemini"`
	ModelName       string        `env:"MODEL_NAME"`
	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	VeniceAPIKey    string        `env:"VENICE_API_KEY"`
	OllamaURL       string        `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	LLMTimeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	LLMMaxAttempts  int           `env:"LLM_MAX_ATTEMPTS" envDefault:"1"`

	EndGameThreshold int    `env:"END_GAME_THRESHOLD" envDefault:"3"`
	NarrativeConfig  string `env:"NARRATIVE_CONFIG"`
	ContentRating    string `env:"CONTENT_RATING"`

	SessionStore string        `env:"SESSION_STORE" envDefault:"memory"`
	RedisURL     string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"1h"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	DebugLLM   bool `env:"DEBUG_LLM"`
	DebugState bool `env:"DEBUG_STATE"`
}

// Load reads the configuration from the environment. Values from a .env file in
// the working directory are used when the variable is not already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	var errs []error
	if c.EndGameThreshold <= 0 {
		errs = append(errs, fmt.Errorf("END_GAME_THRESHOLD must be greater than 0, got %d", c.EndGameThreshold))
	}
	switch c.LLMProvider {
	case ProviderGemini, ProviderAnthropic, ProviderOpenAI, ProviderVenice, ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider))
	}
	switch c.SessionStore {
	case StoreMemory, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore))
	}
	if c.LLMMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("LLM_MAX_ATTEMPTS must be at least 1, got %d", c.LLMMaxAttempts))
	}
	if c.LLMTimeout < 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT must not be negative"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether logs should be machine readable.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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
