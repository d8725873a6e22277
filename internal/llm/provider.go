package llm

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnsupportedProvider is returned for provider names the factory does not know
	ErrUnsupportedProvider = errors.New("unsupported LLM provider")

	// ErrEmptyResponse is returned when a provider answers without any text
	ErrEmptyResponse = errors.New("empty response from LLM provider")

	// ErrMissingAPIKey is returned by providers that need a key when none is configured
	ErrMissingAPIKey = errors.New("API key is required")
)

const (
	// DefaultTemperature keeps coverage judgments close to deterministic
	DefaultTemperature = 0.1

	// DefaultMaxTokens bounds the size of a single judgment
	DefaultMaxTokens = 700

	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 2
	defaultBaseBackoff = 1 * time.Second
)

// Provider sends a single user-role prompt to a text-generation service
type Provider interface {
	// Name returns the provider name
	Name() string

	// Model returns the model the provider sends requests to
	Model() string

	// Complete returns the text content of the model's reply
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "nvidia_nim", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific); empty selects the provider default
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, NIM, proxies)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	Temperature float32

	// MaxRetries for 429 and 5xx responses; BaseBackoff doubles per attempt
	MaxRetries  int
	BaseBackoff time.Duration

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Heuristic scoring only
		Timeout:     int(defaultTimeout / time.Second),
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		MaxRetries:  defaultMaxRetries,
		BaseBackoff: defaultBaseBackoff,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return time.Duration(c.Timeout) * time.Second
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}

func (c Config) temperature() float32 {
	if c.Temperature <= 0 {
		return DefaultTemperature
	}
	return c.Temperature
}

func (c Config) retryPolicy() retryPolicy {
	p := retryPolicy{maxRetries: c.MaxRetries, baseBackoff: c.BaseBackoff}
	if p.maxRetries < 0 {
		p.maxRetries = 0
	}
	if p.baseBackoff <= 0 {
		p.baseBackoff = defaultBaseBackoff
	}
	return p
}
