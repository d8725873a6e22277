package worker

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/regmap/internal/logging"
	"github.com/ppiankov/regmap/internal/model"
)

// DefaultConcurrency bounds in-flight pair evaluations when none is configured
const DefaultConcurrency = 6

// Mapper evaluates one obligation/policy pair and always returns a result
type Mapper interface {
	MapOne(ctx context.Context, o model.ObligationInput, p model.PolicyRecord) model.MappingResult
	BackendName() string
}

// PairJob evaluates one pair
type PairJob struct {
	Index      int
	Mapper     Mapper
	Obligation model.ObligationInput
	Policy     model.PolicyRecord
}

// Execute runs the mapper on the pair
func (j *PairJob) Execute(ctx context.Context) Result {
	return &PairResult{
		Index:  j.Index,
		Result: j.Mapper.MapOne(ctx, j.Obligation, j.Policy),
	}
}

// PairResult is the outcome of a PairJob
type PairResult struct {
	Index  int
	Result model.MappingResult
}

// GetError always returns nil: failed remote evaluations are already
// replaced by heuristic results.
func (r *PairResult) GetError() error {
	return nil
}

// BatchResult is the outcome of one MapAll call
type BatchResult struct {
	RunID     string                `json:"run_id" yaml:"run_id"`
	Attempted int                   `json:"attempted" yaml:"attempted"`
	Fallbacks int                   `json:"fallbacks" yaml:"fallbacks"`
	Cancelled bool                  `json:"cancelled" yaml:"cancelled"`
	Duration  time.Duration         `json:"duration_ns" yaml:"duration"`
	Results   []model.MappingResult `json:"results" yaml:"results"`
}

// BatchMapper evaluates every obligation against every policy
type BatchMapper struct {
	mapper      Mapper
	concurrency int
	logger      *zap.Logger
}

// NewBatchMapper creates a batch mapper. A non-positive concurrency selects
// DefaultConcurrency.
func NewBatchMapper(mapper Mapper, concurrency int, logger *zap.Logger) *BatchMapper {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &BatchMapper{
		mapper:      mapper,
		concurrency: concurrency,
		logger:      logging.OrNop(logger),
	}
}

// Concurrency returns the in-flight evaluation cap
func (b *BatchMapper) Concurrency() int {
	return b.concurrency
}

// MapAll evaluates all len(obligations)*len(policies) pairs and keeps the
// results that are full, partial, or at least 0.5 confident. Results are
// ordered by obligation, then policy.
//
// Cancelling ctx does not abort the batch: the remaining pairs are scored by
// the heuristic and MapAll still returns every retained result.
func (b *BatchMapper) MapAll(ctx context.Context, obligations []model.ObligationInput, policies []model.PolicyRecord) BatchResult {
	start := time.Now()
	batch := BatchResult{
		RunID:     uuid.NewString(),
		Attempted: len(obligations) * len(policies),
		Results:   []model.MappingResult{},
	}

	if batch.Attempted == 0 {
		b.logger.Info("mapping batch skipped, nothing to pair",
			zap.String("run_id", batch.RunID),
			zap.Int("obligations", len(obligations)),
			zap.Int("policies", len(policies)))
		return batch
	}

	pool := NewPool(min(b.concurrency, batch.Attempted))
	pool.Start(ctx)

	index := 0
	for _, o := range obligations {
		for _, p := range policies {
			pool.Submit(&PairJob{
				Index:      index,
				Mapper:     b.mapper,
				Obligation: o,
				Policy:     p,
			})
			index++
		}
	}

	raw := pool.Wait()

	pairs := make([]*PairResult, 0, len(raw))
	for _, r := range raw {
		pairs = append(pairs, r.(*PairResult))
	}
	slices.SortFunc(pairs, func(a, c *PairResult) int { return a.Index - c.Index })

	backend := b.mapper.BackendName()
	for _, pr := range pairs {
		if pr.Result.Backend != backend {
			batch.Fallbacks++
		}
		if pr.Result.Retain() {
			batch.Results = append(batch.Results, pr.Result)
		}
	}

	batch.Cancelled = ctx.Err() != nil
	batch.Duration = time.Since(start)

	b.logger.Info("mapping batch complete",
		zap.String("run_id", batch.RunID),
		zap.String("backend", backend),
		zap.Int("attempted", batch.Attempted),
		zap.Int("retained", len(batch.Results)),
		zap.Int("fallbacks", batch.Fallbacks),
		zap.Bool("cancelled", batch.Cancelled),
		zap.Duration("duration", batch.Duration))

	return batch
}
