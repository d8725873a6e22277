package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/regmap/internal/cache"
	"github.com/ppiankov/regmap/internal/llm"
	"github.com/ppiankov/regmap/internal/logging"
	"github.com/ppiankov/regmap/internal/mapping"
	"github.com/ppiankov/regmap/internal/model"
	"github.com/ppiankov/regmap/internal/pipeline"
	"github.com/ppiankov/regmap/internal/worker"
)

// loadConfig merges defaults, the config file, REGMAP_* variables and the
// provider credentials found in the environment.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case cfgFile != "":
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	applyOverrides(cfg)
	applyProviderEnv(cfg)
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)

	return cfg, nil
}

func applyOverrides(cfg *model.Config) {
	overrideString("llm.provider", &cfg.LLM.Provider)
	overrideString("llm.model", &cfg.LLM.Model)
	overrideString("llm.base_url", &cfg.LLM.BaseURL)
	overrideInt("llm.timeout", &cfg.LLM.Timeout)
	overrideInt("llm.max_retries", &cfg.LLM.MaxRetries)
	overrideInt("mapping.concurrency", &cfg.Mapping.Concurrency)
	overrideInt("extraction.workers", &cfg.Extraction.Workers)
	overrideBool("extraction.entity_tagging", &cfg.Extraction.EntityTagging)
	overrideBool("cache.enabled", &cfg.Cache.Enabled)
	overrideString("cache.dir", &cfg.Cache.Dir)
	overrideFloat("rate_limiting.requests_per_second", &cfg.RateLimiting.RequestsPerSecond)
	overrideInt("rate_limiting.burst_size", &cfg.RateLimiting.BurstSize)
	overrideString("http.user_agent", &cfg.HTTP.UserAgent)
	overrideBool("http.respect_robots", &cfg.HTTP.RespectRobots)
	overrideString("http.http_proxy", &cfg.HTTP.HTTPProxy)
	overrideString("http.https_proxy", &cfg.HTTP.HTTPSProxy)
	overrideString("http.no_proxy", &cfg.HTTP.NoProxy)
	overrideString("logging.level", &cfg.Logging.Level)
	overrideString("logging.format", &cfg.Logging.Format)
	overrideBool("output.verbose", &cfg.Output.Verbose)
	overrideString("output.format", &cfg.Output.Format)
}

func overrideString(key string, dst *string) {
	if viper.IsSet(key) {
		if v := viper.GetString(key); v != "" {
			*dst = v
		}
	}
}

func overrideInt(key string, dst *int) {
	if viper.IsSet(key) {
		*dst = viper.GetInt(key)
	}
}

func overrideFloat(key string, dst *float64) {
	if viper.IsSet(key) {
		*dst = viper.GetFloat64(key)
	}
}

func overrideBool(key string, dst *bool) {
	if viper.IsSet(key) {
		*dst = viper.GetBool(key)
	}
}

// applyProviderEnv reads credentials from the conventional variables. Keys
// are never read from the config file.
func applyProviderEnv(cfg *model.Config) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = os.Getenv("MAPPING_PROVIDER")
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = os.Getenv("MAPPING_MODEL")
	}

	cfg.LLM.APIKey = os.Getenv("REGMAP_LLM_API_KEY")

	switch strings.ToLower(cfg.LLM.Provider) {
	case llm.ProviderOpenAI:
		cfg.LLM.APIKey = firstNonEmpty(cfg.LLM.APIKey, os.Getenv("OPENAI_API_KEY"))
		cfg.LLM.BaseURL = firstNonEmpty(cfg.LLM.BaseURL, os.Getenv("OPENAI_BASE_URL"))
	case llm.ProviderNIM, "nim":
		cfg.LLM.APIKey = firstNonEmpty(cfg.LLM.APIKey, os.Getenv("NIM_API_KEY"), os.Getenv("NVIDIA_API_KEY"))
		cfg.LLM.BaseURL = firstNonEmpty(cfg.LLM.BaseURL, os.Getenv("NIM_BASE_URL"))
	case llm.ProviderAnthropic, "claude":
		cfg.LLM.APIKey = firstNonEmpty(cfg.LLM.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
	case llm.ProviderOllama:
		cfg.LLM.BaseURL = firstNonEmpty(cfg.LLM.BaseURL, os.Getenv("OLLAMA_BASE_URL"))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// mappingFlags are shared by the commands that score pairs
type mappingFlags struct {
	provider    string
	model       string
	baseURL     string
	concurrency int
	noCache     bool
	metricsAddr string
}

func (f *mappingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "remote backend: openai, nvidia_nim, anthropic, ollama (default: heuristic)")
	cmd.Flags().StringVar(&f.model, "model", "", "model name (default depends on provider)")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "custom API endpoint")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", worker.DefaultConcurrency, "maximum pairs evaluated at once")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "do not reuse cached remote judgments")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running (e.g. :9090)")
}

func (f *mappingFlags) apply(cmd *cobra.Command, cfg *model.Config) {
	if cmd.Flags().Changed("provider") {
		cfg.LLM.Provider = f.provider
		applyProviderEnv(cfg)
	}
	if cmd.Flags().Changed("model") {
		cfg.LLM.Model = f.model
	}
	if cmd.Flags().Changed("base-url") {
		cfg.LLM.BaseURL = f.baseURL
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Mapping.Concurrency = f.concurrency
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
}

// newLogger builds the process logger from config
func newLogger(cfg *model.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// newAgent wires the mapping agent with its cache, rate limiter and metrics
func newAgent(cfg *model.Config, logger *zap.Logger) (*mapping.Agent, error) {
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	// a local model is not paced
	limiter.SetRate(llm.ProviderOllama, 0, 0)

	opts := []mapping.Option{
		mapping.WithLogger(logger),
		mapping.WithMetrics(mapping.NewMetrics()),
		mapping.WithRateLimiter(limiter),
	}
	if store := cache.New(cfg.Cache); store != nil {
		opts = append(opts, mapping.WithJudgmentCache(cache.NewJudgments(store, cfg.Cache.TTL)))
	}

	agent, err := mapping.NewAgent(llm.ConfigFromModel(cfg), opts...)
	if err != nil {
		return nil, err
	}

	b := agent.Backend()
	logger.Info("mapping backend selected",
		zap.String("kind", b.Kind.String()),
		zap.String("provider", b.Remote.Provider),
		zap.String("model", b.Remote.Model))
	return agent, nil
}

// serveMetrics exposes /metrics until the returned stop function is called
func serveMetrics(addr string, logger *zap.Logger) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// commandContext is cancelled on SIGINT/SIGTERM or after timeout
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// writeOutput encodes v to path ("-" for stdout) in the given format
func writeOutput(path, format string, v any) error {
	return pipeline.WriteFile(path, func(w io.Writer) error {
		return pipeline.Write(w, format, v)
	})
}

// writeMarkdown writes the gap report when path is set
func writeMarkdown(path string, report model.CoverageReport, results []model.MappingResult) error {
	if path == "" {
		return nil
	}
	return pipeline.WriteFile(path, func(w io.Writer) error {
		return pipeline.WriteMarkdown(w, report, results)
	})
}

// collectSources merges positional arguments with a sources file
func collectSources(args []string, fromFile, regulationID string) ([]pipeline.Source, error) {
	var sources []pipeline.Source
	for _, arg := range args {
		sources = append(sources, pipeline.NewSource(arg, regulationID))
	}

	if fromFile != "" {
		more, err := pipeline.ReadSources(fromFile)
		if err != nil {
			return nil, err
		}
		sources = append(sources, more...)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no documents given: pass paths or URLs, or --from-file")
	}
	if regulationID != "" && len(sources) > 1 {
		return nil, fmt.Errorf("--regulation-id needs exactly one document, got %d", len(sources))
	}
	return sources, nil
}
