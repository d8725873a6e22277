//go:build property
// +build property

package worker

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ppiankov/regmap/internal/model"
)

// flakyMapper falls back on every other call
type flakyMapper struct {
	calls int32
}

func (f *flakyMapper) BackendName() string { return "flaky" }

func (f *flakyMapper) MapOne(ctx context.Context, o model.ObligationInput, p model.PolicyRecord) model.MappingResult {
	n := atomic.AddInt32(&f.calls, 1)
	backend := "flaky"
	if n%2 == 0 {
		backend = "heuristic"
	}
	return model.NewMappingResult(o, p, model.Judgment{Status: model.CoverageNone, Rationale: "r"}, backend)
}

// Property: N obligations and M policies always yield N*M attempts
func TestMapAllAttemptsEveryPair(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("attempted == N*M", prop.ForAll(
		func(n, m, concurrency int) bool {
			mapper := &flakyMapper{}
			batch := NewBatchMapper(mapper, concurrency, nil).MapAll(context.Background(), obligations(n), policies(make([]string, m)...))
			return batch.Attempted == n*m &&
				int(atomic.LoadInt32(&mapper.calls)) == n*m &&
				batch.Fallbacks == n*m/2 &&
				len(batch.Results) == 0
		},
		gen.IntRange(0, 12),
		gen.IntRange(0, 12),
		gen.IntRange(-2, 10),
	))

	properties.TestingRun(t)
}
