package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/ppiankov/regmap/internal/model"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(func() {
		viper.Reset()
		cfgFile = ""
	})
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `llm:
  provider: anthropic
  model: claude-3-5-haiku-latest
mapping:
  concurrency: 3
cache:
  enabled: false
  ttl: 2h
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("REGMAP_LLM_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("REGMAP_MAPPING_CONCURRENCY", "2")

	cfgFile = path
	initConfig()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.LLM.Provider != "anthropic" || cfg.LLM.Model != "claude-3-5-haiku-latest" {
		t.Errorf("unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.LLM.APIKey != "sk-ant-test" {
		t.Errorf("API key not read from the environment")
	}
	if cfg.Mapping.Concurrency != 2 {
		t.Errorf("concurrency = %d, want 2 from REGMAP_MAPPING_CONCURRENCY", cfg.Mapping.Concurrency)
	}
	if cfg.Cache.Enabled || cfg.Cache.TTL.Hours() != 2 {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
	if cfg.Extraction.Workers != model.DefaultConfig().Extraction.Workers {
		t.Errorf("unset values should keep defaults, got workers=%d", cfg.Extraction.Workers)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	resetViper(t)

	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	initConfig()

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected error for a missing --config file")
	}
}

func TestApplyProviderEnv(t *testing.T) {
	t.Setenv("REGMAP_LLM_API_KEY", "")
	t.Setenv("NIM_API_KEY", "")
	t.Setenv("NVIDIA_API_KEY", "nvapi-test")
	t.Setenv("NIM_BASE_URL", "https://nim.internal/v1")
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "nvidia_nim"
	applyProviderEnv(cfg)
	if cfg.LLM.APIKey != "nvapi-test" || cfg.LLM.BaseURL != "https://nim.internal/v1" {
		t.Errorf("unexpected nim config: %+v", cfg.LLM)
	}

	cfg = model.DefaultConfig()
	cfg.LLM.Provider = "ollama"
	applyProviderEnv(cfg)
	if cfg.LLM.APIKey != "" || cfg.LLM.BaseURL != "http://gpu-box:11434" {
		t.Errorf("unexpected ollama config: %+v", cfg.LLM)
	}
}

func TestApplyProviderEnv_MappingProvider(t *testing.T) {
	t.Setenv("REGMAP_LLM_API_KEY", "")
	t.Setenv("MAPPING_PROVIDER", "openai")
	t.Setenv("MAPPING_MODEL", "gpt-4o")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := model.DefaultConfig()
	applyProviderEnv(cfg)
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o" || cfg.LLM.APIKey != "sk-test" {
		t.Errorf("unexpected llm config: %+v", cfg.LLM)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := expandHome("~/.regmap/cache"); got != filepath.Join(home, ".regmap", "cache") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/var/cache/regmap"); got != "/var/cache/regmap" {
		t.Errorf("absolute path changed: %q", got)
	}
}

func TestCollectSources(t *testing.T) {
	if _, err := collectSources(nil, "", ""); err == nil {
		t.Error("expected error without documents")
	}
	if _, err := collectSources([]string{"a.txt", "b.txt"}, "", "REG-1"); err == nil {
		t.Error("expected error for --regulation-id with two documents")
	}

	sources, err := collectSources([]string{"rules/a.txt"}, "", "REG-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 || sources[0].RegulationID != "REG-1" {
		t.Errorf("unexpected sources: %+v", sources)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	if !strings.HasPrefix(out.String(), "regmap ") {
		t.Errorf("unexpected version output: %q", out.String())
	}
}
