package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/regmap/internal/pipeline"
)

var (
	runFromFile     string
	runRegulationID string
	runPolicies     string
	runOut          string
	runMarkdown     string
	runFormat       string
	runTimeout      time.Duration
	runFlags        mappingFlags
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [file|url...]",
	Short: "Extract obligations, map them to policies and report gaps",
	Long: `Run chains extract and map in one pass and builds the coverage report:
for each obligation, the best coverage any policy achieved, and the list of
obligations no policy fully covers, most severe risk tier first.

Example:
  regmap run rules/17a-4.txt --policies policies.yaml --md gaps.md
  regmap run --from-file sources.txt --policies policies.yaml --provider nvidia_nim -o run.json`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFromFile, "from-file", "", "read document locations from a file (one per line)")
	runCmd.Flags().StringVar(&runRegulationID, "regulation-id", "", "regulation id to record (single document only)")
	runCmd.Flags().StringVar(&runPolicies, "policies", "", "policies file (YAML or JSON)")
	runCmd.Flags().StringVarP(&runOut, "output", "o", "-", "output path for the full run, - for stdout")
	runCmd.Flags().StringVar(&runMarkdown, "md", "", "write a Markdown gap report to this path")
	runCmd.Flags().StringVar(&runFormat, "format", "", "output format: json or yaml (default from config)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Minute, "overall timeout; pairs left when it expires are scored by the heuristic")
	runFlags.register(runCmd)

	_ = runCmd.MarkFlagRequired("policies")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runFlags.apply(cmd, cfg)
	if runFormat == "" {
		runFormat = cfg.Output.Format
	}

	sources, err := collectSources(args, runFromFile, runRegulationID)
	if err != nil {
		return err
	}
	policies, err := pipeline.LoadPolicies(runPolicies)
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

	stopMetrics := serveMetrics(runFlags.metricsAddr, logger)
	defer stopMetrics()

	ctx, cancel := commandContext(runTimeout)
	defer cancel()

	result, err := pipeline.NewPipeline(cfg, agent, logger).Run(ctx, sources, policies)
	if err != nil {
		return err
	}

	if err := writeOutput(runOut, runFormat, result); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if err := writeMarkdown(runMarkdown, result.Report, result.Batch.Results); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	pipeline.WriteSummary(os.Stderr, result.Report, result.Batch.Attempted, result.Batch.Fallbacks)
	return nil
}
