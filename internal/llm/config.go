package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderNone      = "none"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// Config holds LLM provider configuration. The zero provider ("none")
// disables model calls; callers fall back to static text.
type Config struct {
	Provider string `koanf:"provider" yaml:"provider"`

	Anthropic AnthropicConfig `koanf:"anthropic" yaml:"anthropic"`
	OpenAI    OpenAIConfig    `koanf:"openai" yaml:"openai"`
	Gemini    GeminiConfig    `koanf:"gemini" yaml:"gemini"`
	Retry     RetryConfig     `koanf:"retry" yaml:"retry"`

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
}

type AnthropicConfig struct {
	APIKey  string `koanf:"api_key" yaml:"api_key"`
	Model   string `koanf:"model" yaml:"model"`
	BaseURL string `koanf:"base_url" yaml:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `koanf:"api_key" yaml:"api_key"`
	Model   string `koanf:"model" yaml:"model"`
	BaseURL string `koanf:"base_url" yaml:"base_url"` // any OpenAI-compatible endpoint
}

type GeminiConfig struct {
	APIKey string `koanf:"api_key" yaml:"api_key"`
	Model  string `koanf:"model" yaml:"model"`
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts" yaml:"max_attempts"`
	InitialWait time.Duration `koanf:"initial_wait" yaml:"initial_wait"`
	MaxWait     time.Duration `koanf:"max_wait" yaml:"max_wait"`
	Multiplier  float64       `koanf:"multiplier" yaml:"multiplier"`
}

// DefaultConfig returns a disabled Config with model defaults filled in.
func DefaultConfig() Config {
	return Config{
		Provider:  ProviderNone,
		Anthropic: AnthropicConfig{Model: "claude-haiku"},
		OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:    GeminiConfig{Model: "gemini-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 20 * time.Second,
	}
}

// envBindings maps IATRO_* variables onto Config fields.
var envBindings = []struct {
	name string
	set  func(*Config, string)
}{
	{"IATRO_LLM_PROVIDER", func(c *Config, v string) { c.Provider = v }},
	{"IATRO_ANTHROPIC_API_KEY", func(c *Config, v string) { c.Anthropic.APIKey = v }},
	{"IATRO_ANTHROPIC_MODEL", func(c *Config, v string) { c.Anthropic.Model = v }},
	{"IATRO_ANTHROPIC_BASE_URL", func(c *Config, v string) { c.Anthropic.BaseURL = v }},
	{"IATRO_OPENAI_API_KEY", func(c *Config, v string) { c.OpenAI.APIKey = v }},
	{"IATRO_OPENAI_MODEL", func(c *Config, v string) { c.OpenAI.Model = v }},
	{"IATRO_OPENAI_BASE_URL", func(c *Config, v string) { c.OpenAI.BaseURL = v }},
	{"IATRO_GEMINI_API_KEY", func(c *Config, v string) { c.Gemini.APIKey = v }},
	{"IATRO_GEMINI_MODEL", func(c *Config, v string) { c.Gemini.Model = v }},
}

// ApplyEnv overlays IATRO_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	applyEnv(cfg, os.Getenv)
}

func applyEnv(cfg *Config, getenv func(string) string) {
	for _, b := range envBindings {
		if v := getenv(b.name); v != "" {
			b.set(cfg, v)
		}
	}
}

// DiscoverConfig probes the vendors' standard API key variables
// (Gemini, then OpenAI, then Anthropic) and enables the first provider
// found. It reports false when none is set.
func DiscoverConfig(base Config) (Config, bool) {
	return discover(base, os.Getenv)
}

func discover(cfg Config, getenv func(string) string) (Config, bool) {
	if k := getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = ProviderGemini
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenAI
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = ProviderAnthropic
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	return cfg, false
}

// Enabled reports whether a model provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != "" && c.Provider != ProviderNone
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	switch c.Provider {
	case "", ProviderNone, ProviderMock:
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("IATRO_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("IATRO_OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("IATRO_GEMINI_API_KEY is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Retry.Multiplier < 1 && c.Retry.MaxAttempts > 1 {
		return fmt.Errorf("retry multiplier must be >= 1, got %v", c.Retry.Multiplier)
	}
	return nil
}
