package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete runtime configuration. It is built once by the CLI
// and passed explicitly to constructors.
type Config struct {
	LLM          LLMConfig          `yaml:"llm"`
	Mapping      MappingConfig      `yaml:"mapping"`
	Extraction   ExtractionConfig   `yaml:"extraction"`
	Cache        CacheConfig        `yaml:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
	HTTP         HTTPConfig         `yaml:"http"`
	Logging      LoggingConfig      `yaml:"logging"`
	Output       OutputConfig       `yaml:"output"`
}

// LLMConfig selects the remote scoring backend. An empty Provider selects the
// heuristic backend.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "", "openai", "nvidia_nim", "anthropic", "ollama"
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"-"` // Never written to disk; read from the environment
	BaseURL     string  `yaml:"base_url,omitempty"`
	Timeout     int     `yaml:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	MaxRetries  int     `yaml:"max_retries"`
}

// MappingConfig controls the batch orchestrator
type MappingConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// ExtractionConfig controls the extraction stage
type ExtractionConfig struct {
	EntityTagging bool `yaml:"entity_tagging"`
	Workers       int  `yaml:"workers"` // Documents extracted in parallel
}

// CacheConfig controls memoization of remote judgments
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"`
	TTL     time.Duration `yaml:"ttl"`
}

// RateLimitingConfig paces remote model requests per provider
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// HTTPConfig controls document fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty"`
	NoProxy       string        `yaml:"no_proxy,omitempty"`
}

// LoggingConfig controls the zap logger
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose"`
	Format  string `yaml:"format"` // json or yaml
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	cacheDir := ".regmap-cache"
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".regmap", "cache")
	}

	return &Config{
		LLM: LLMConfig{
			Provider:    "", // Heuristic backend by default
			Timeout:     30,
			MaxTokens:   700,
			Temperature: 0.1,
			MaxRetries:  2,
		},
		Mapping: MappingConfig{
			Concurrency: 6,
		},
		Extraction: ExtractionConfig{
			EntityTagging: true,
			Workers:       4,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     cacheDir,
			TTL:     24 * time.Hour,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "regmap/0.1 (+https://github.com/ppiankov/regmap)",
			MaxBodyBytes:  5_000_000,
			RespectRobots: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			Format: "json",
		},
	}
}
