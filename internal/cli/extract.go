package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/regmap/internal/pipeline"
)

var (
	extractFromFile     string
	extractRegulationID string
	extractOut          string
	extractFormat       string
	extractTimeout      time.Duration
	extractWorkers      int
	extractNoEntities   bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [file|url...]",
	Short: "Extract compliance obligations from regulatory documents",
	Long: `Extract splits each document into sentences, keeps the ones that impose a
duty, and annotates them with type, deadline, risk tier and entities.

Documents may be local files (plain text or HTML) or http(s) URLs. URLs are
fetched politely: robots.txt is honoured and requests are paced per host.

Example:
  regmap extract rules/17a-4.txt --regulation-id SEC-17A-4
  regmap extract https://www.ecfr.gov/current/title-17/section-240.17a-4 -o obligations.json
  regmap extract --from-file sources.txt --format yaml -o obligations.yaml`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractFromFile, "from-file", "", "read document locations from a file (one per line)")
	extractCmd.Flags().StringVar(&extractRegulationID, "regulation-id", "", "regulation id to record (single document only; default derived from the name)")
	extractCmd.Flags().StringVarP(&extractOut, "output", "o", "-", "output path, - for stdout")
	extractCmd.Flags().StringVar(&extractFormat, "format", "", "output format: json or yaml (default from config)")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 5*time.Minute, "overall timeout")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "documents processed in parallel (default from config)")
	extractCmd.Flags().BoolVar(&extractNoEntities, "no-entities", false, "skip date and amount tagging")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if extractWorkers > 0 {
		cfg.Extraction.Workers = extractWorkers
	}
	if extractNoEntities {
		cfg.Extraction.EntityTagging = false
	}
	if extractFormat == "" {
		extractFormat = cfg.Output.Format
	}

	sources, err := collectSources(args, extractFromFile, extractRegulationID)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := commandContext(extractTimeout)
	defer cancel()

	p := pipeline.NewPipeline(cfg, nil, logger)
	records, err := p.ExtractAll(ctx, sources)
	if err != nil {
		return err
	}

	logger.Info("extraction complete",
		zap.Int("documents", len(sources)),
		zap.Int("obligations", len(records)))

	if err := writeOutput(extractOut, extractFormat, records); err != nil {
		return fmt.Errorf("write obligations: %w", err)
	}
	if cfg.Output.Verbose && extractOut != "-" {
		fmt.Fprintf(os.Stderr, "✓ Wrote %d obligations: %s\n", len(records), extractOut)
	}
	return nil
}
