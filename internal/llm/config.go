package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects the backend: "openrouter", "anthropic", "openai",
	// "gemini" or "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single generative call including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "deepseek/deepseek-r1-0528-qwen3-8b:free"
	BaseURL string // Default: "https://openrouter.ai/api/v1"

	// Referer and Title are sent as OpenRouter attribution headers.
	Referer string
	Title   string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config targeting OpenRouter's free DeepSeek model.
func DefaultConfig() Config {
	return Config{
		Provider:  "openrouter",
		Anthropic: AnthropicConfig{Model: "claude-haiku"},
		OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:    GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{
			Model: "deepseek/deepseek-r1-0528-qwen3-8b:free",
			Title: "hintly",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// envBindings maps HINTLY_* variables onto config fields.
func envBindings(cfg *Config) map[string]*string {
	return map[string]*string{
		"HINTLY_LLM_PROVIDER":        &cfg.Provider,
		"HINTLY_ANTHROPIC_API_KEY":   &cfg.Anthropic.APIKey,
		"HINTLY_ANTHROPIC_MODEL":     &cfg.Anthropic.Model,
		"HINTLY_OPENAI_API_KEY":      &cfg.OpenAI.APIKey,
		"HINTLY_OPENAI_MODEL":        &cfg.OpenAI.Model,
		"HINTLY_OPENAI_BASE_URL":     &cfg.OpenAI.BaseURL,
		"HINTLY_GEMINI_API_KEY":      &cfg.Gemini.APIKey,
		"HINTLY_GEMINI_MODEL":        &cfg.Gemini.Model,
		"HINTLY_OPENROUTER_API_KEY":  &cfg.OpenRouter.APIKey,
		"HINTLY_OPENROUTER_MODEL":    &cfg.OpenRouter.Model,
		"HINTLY_OPENROUTER_BASE_URL": &cfg.OpenRouter.BaseURL,
		"HINTLY_OPENROUTER_REFERER":  &cfg.OpenRouter.Referer,
	}
}

// ConfigFromEnv builds a Config from HINTLY_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	for name, field := range envBindings(&cfg) {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}
	if v := os.Getenv("HINTLY_LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("HINTLY_LLM_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// DiscoverConfig probes the vendors' own API key variables (OpenRouter,
// Gemini, OpenAI, Anthropic in that order) and returns a Config for the
// first one found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	probes := []struct {
		env      string
		provider string
		key      *string
	}{
		{"OPENROUTER_API_KEY", "openrouter", &cfg.OpenRouter.APIKey},
		{"GEMINI_API_KEY", "gemini", &cfg.Gemini.APIKey},
		{"OPENAI_API_KEY", "openai", &cfg.OpenAI.APIKey},
		{"ANTHROPIC_API_KEY", "anthropic", &cfg.Anthropic.APIKey},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.provider
			*p.key = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case "anthropic":
		key, env = c.Anthropic.APIKey, "HINTLY_ANTHROPIC_API_KEY"
	case "openai":
		key, env = c.OpenAI.APIKey, "HINTLY_OPENAI_API_KEY"
	case "gemini":
		key, env = c.Gemini.APIKey, "HINTLY_GEMINI_API_KEY"
	case "openrouter":
		key, env = c.OpenRouter.APIKey, "HINTLY_OPENROUTER_API_KEY"
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
