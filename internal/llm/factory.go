package llm

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ppiankov/regmap/internal/model"
	"github.com/ppiankov/regmap/internal/util"
)

// Provider names
const (
	ProviderOpenAI    = "openai"
	ProviderNIM       = "nvidia_nim"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name returns (nil, nil): remote scoring is disabled.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(config)

	case ProviderNIM, "nim":
		return NewNIMProvider(config)

	case ProviderAnthropic, "claude":
		return NewAnthropicProvider(config)

	case ProviderOllama:
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: %s (supported: openai, nvidia_nim, anthropic, ollama)", ErrUnsupportedProvider, config.Provider)
	}
}

// RequiresAPIKey reports whether the named provider needs an API key
func RequiresAPIKey(provider string) bool {
	switch strings.ToLower(provider) {
	case ProviderOllama, "":
		return false
	default:
		return true
	}
}

// ConfigFromModel converts the application config into provider config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     cfg.LLM.Timeout,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		MaxRetries:  cfg.LLM.MaxRetries,
		BaseBackoff: defaultBaseBackoff,
		HTTPProxy:   cfg.HTTP.HTTPProxy,
		HTTPSProxy:  cfg.HTTP.HTTPSProxy,
		NoProxy:     cfg.HTTP.NoProxy,
	}
}

func newHTTPClient(config Config) *http.Client {
	return &http.Client{
		Timeout: config.timeout(),
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}
}
