package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/regmap/internal/extract"
	"github.com/ppiankov/regmap/internal/extract/adapters"
	"github.com/ppiankov/regmap/internal/logging"
	"github.com/ppiankov/regmap/internal/model"
	"github.com/ppiankov/regmap/internal/score"
	"github.com/ppiankov/regmap/internal/worker"
)

// Pipeline runs extraction, mapping and gap reporting
type Pipeline struct {
	fetcher   *Fetcher
	registry  *adapters.Registry
	extractor *extract.Extractor
	batch     *worker.BatchMapper
	workers   int
	logger    *zap.Logger
}

// NewPipeline creates a pipeline. mapper may be nil when only extraction is needed.
func NewPipeline(cfg *model.Config, mapper worker.Mapper, logger *zap.Logger) *Pipeline {
	logger = logging.OrNop(logger)

	var tagger extract.EntityTagger
	if cfg.Extraction.EntityTagging {
		tagger = extract.LexicalTagger{}
	}

	fetcher := NewFetcher(
		cfg.HTTP.Timeout,
		cfg.HTTP.UserAgent,
		cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.RespectRobots,
		cfg.HTTP.HTTPProxy,
		cfg.HTTP.HTTPSProxy,
		cfg.HTTP.NoProxy,
	).WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize))

	p := &Pipeline{
		fetcher:   fetcher,
		registry:  adapters.NewRegistry(),
		extractor: extract.NewExtractor(nil, tagger, logger),
		workers:   max(cfg.Extraction.Workers, 1),
		logger:    logger,
	}
	if mapper != nil {
		p.batch = worker.NewBatchMapper(mapper, cfg.Mapping.Concurrency, logger)
	}
	return p
}

// Document is the visible text of one source
type Document struct {
	Source  Source
	Adapter string
	Text    string
}

// Load fetches or reads a source and extracts its visible text
func (p *Pipeline) Load(ctx context.Context, src Source) (Document, error) {
	var (
		body        []byte
		contentType string
		location    = src.Location
	)

	if isURL(src.Location) {
		res, err := p.fetcher.FetchWithRetry(ctx, src.Location)
		if err != nil {
			return Document{}, err
		}
		if res.Truncated {
			p.logger.Warn("document truncated",
				zap.String("location", src.Location),
				zap.Int("bytes", len(res.Body)))
		}
		body, contentType, location = res.Body, res.ContentType, res.FinalURL
	} else {
		data, err := os.ReadFile(src.Location)
		if err != nil {
			return Document{}, fmt.Errorf("read document: %w", err)
		}
		body, contentType = data, contentTypeForFile(src.Location)
	}

	adapter := p.registry.FindAdapter(location, contentType)
	text, err := adapter.ExtractText(body, location)
	if err != nil {
		return Document{}, fmt.Errorf("%s adapter: %w", adapter.Name(), err)
	}

	p.logger.Debug("document loaded",
		zap.String("location", location),
		zap.String("adapter", adapter.Name()),
		zap.Int("chars", len(text)))

	return Document{Source: src, Adapter: adapter.Name(), Text: text}, nil
}

// ExtractAll loads and extracts every source concurrently. Records keep
// source order, then document order. The first load failure aborts the call.
func (p *Pipeline) ExtractAll(ctx context.Context, sources []Source) ([]model.ObligationRecord, error) {
	perSource := make([][]model.ObligationRecord, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, src := range sources {
		g.Go(func() error {
			doc, err := p.Load(gctx, src)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Location, err)
			}
			perSource[i] = p.extractor.Extract(doc.Text, src.RegulationID)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := []model.ObligationRecord{}
	for _, rs := range perSource {
		records = append(records, rs...)
	}
	return records, nil
}

// Inputs numbers extracted records for the mapping stage
func Inputs(records []model.ObligationRecord) []model.ObligationInput {
	inputs := make([]model.ObligationInput, len(records))
	for i, r := range records {
		inputs[i] = model.InputFromRecord(fmt.Sprintf("OBL-%04d", i+1), r)
	}
	return inputs
}

// Map evaluates every obligation against every policy
func (p *Pipeline) Map(ctx context.Context, obligations []model.ObligationInput, policies []model.PolicyRecord) (worker.BatchResult, error) {
	if p.batch == nil {
		return worker.BatchResult{}, fmt.Errorf("pipeline has no mapper")
	}
	return p.batch.MapAll(ctx, obligations, policies), nil
}

// RunResult is the outcome of a full extract, map and report pass
type RunResult struct {
	RunID       string                   `json:"run_id" yaml:"run_id"`
	Obligations []model.ObligationRecord `json:"obligations" yaml:"obligations"`
	Inputs      []model.ObligationInput  `json:"-" yaml:"-"`
	Batch       worker.BatchResult       `json:"mapping" yaml:"mapping"`
	Report      model.CoverageReport     `json:"report" yaml:"report"`
}

// Run extracts obligations from sources, maps them to policies and builds the
// gap report.
func (p *Pipeline) Run(ctx context.Context, sources []Source, policies []model.PolicyRecord) (*RunResult, error) {
	records, err := p.ExtractAll(ctx, sources)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	inputs := Inputs(records)
	batch, err := p.Map(ctx, inputs, policies)
	if err != nil {
		return nil, err
	}

	return &RunResult{
		RunID:       batch.RunID,
		Obligations: records,
		Inputs:      inputs,
		Batch:       batch,
		Report:      score.Summarize(batch.RunID, inputs, batch.Results),
	}, nil
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func contentTypeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return "text/html"
	default:
		return "text/plain"
	}
}
