package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/regmap/internal/pipeline"
	"github.com/ppiankov/regmap/internal/score"
)

var (
	mapObligations string
	mapPolicies    string
	mapOut         string
	mapMarkdown    string
	mapFormat      string
	mapTimeout     time.Duration
	mapFlags       mappingFlags
)

// mapCmd represents the map command
var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Map obligations onto internal policies",
	Long: `Map evaluates every obligation against every policy and keeps the pairs
judged full or partial, plus confident "none" judgments.

Without --provider the keyword-overlap heuristic is used. With a provider,
each pair is sent to the language model; any failure (network, timeout,
unparseable answer) falls back to the heuristic for that pair only.

Example:
  regmap map --obligations obligations.json --policies policies.yaml
  regmap map --obligations o.yaml --policies p.yaml --provider openai --md gaps.md
  regmap map --obligations o.yaml --policies p.yaml --provider ollama --concurrency 2 --metrics-addr :9090`,
	Args: cobra.NoArgs,
	RunE: runMap,
}

func init() {
	rootCmd.AddCommand(mapCmd)

	mapCmd.Flags().StringVar(&mapObligations, "obligations", "", "obligations file (YAML or JSON, e.g. the output of regmap extract)")
	mapCmd.Flags().StringVar(&mapPolicies, "policies", "", "policies file (YAML or JSON)")
	mapCmd.Flags().StringVarP(&mapOut, "output", "o", "-", "output path for mapping results, - for stdout")
	mapCmd.Flags().StringVar(&mapMarkdown, "md", "", "write a Markdown gap report to this path")
	mapCmd.Flags().StringVar(&mapFormat, "format", "", "output format: json or yaml (default from config)")
	mapCmd.Flags().DurationVar(&mapTimeout, "timeout", 30*time.Minute, "overall timeout; pairs left when it expires are scored by the heuristic")
	mapFlags.register(mapCmd)

	_ = mapCmd.MarkFlagRequired("obligations")
	_ = mapCmd.MarkFlagRequired("policies")
}

func runMap(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mapFlags.apply(cmd, cfg)
	if mapFormat == "" {
		mapFormat = cfg.Output.Format
	}

	obligations, err := pipeline.LoadObligations(mapObligations)
	if err != nil {
		return err
	}
	policies, err := pipeline.LoadPolicies(mapPolicies)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	agent, err := newAgent(cfg, logger)
	if err != nil {
		return err
	}

	stopMetrics := serveMetrics(mapFlags.metricsAddr, logger)
	defer stopMetrics()

	ctx, cancel := commandContext(mapTimeout)
	defer cancel()

	p := pipeline.NewPipeline(cfg, agent, logger)
	batch, err := p.Map(ctx, obligations, policies)
	if err != nil {
		return err
	}
	report := score.Summarize(batch.RunID, obligations, batch.Results)

	if err := writeOutput(mapOut, mapFormat, batch); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if err := writeMarkdown(mapMarkdown, report, batch.Results); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	pipeline.WriteSummary(os.Stderr, report, batch.Attempted, batch.Fallbacks)
	return nil
}
