package mapping

import (
	"context"
	"fmt"

	"github.com/ppiankov/regmap/internal/cache"
	"github.com/ppiankov/regmap/internal/llm"
	"github.com/ppiankov/regmap/internal/model"
	"github.com/ppiankov/regmap/internal/score"
)

// BackendKind selects how a pair is judged
type BackendKind int

const (
	// BackendHeuristic scores keyword overlap locally
	BackendHeuristic BackendKind = iota
	// BackendRemote asks a hosted or local language model
	BackendRemote
)

// HeuristicName is recorded as the backend of heuristic results
const HeuristicName = "heuristic"

func (k BackendKind) String() string {
	switch k {
	case BackendHeuristic:
		return HeuristicName
	case BackendRemote:
		return "remote"
	default:
		return fmt.Sprintf("BackendKind(%d)", int(k))
	}
}

// RemoteSpec identifies the remote model behind a BackendRemote
type RemoteSpec struct {
	Provider string
	Model    string
	Endpoint string
}

// Pair is one obligation/policy evaluation unit
type Pair struct {
	Obligation model.ObligationInput
	Policy     model.PolicyRecord
}

// RateLimiter paces remote calls per key
type RateLimiter interface {
	Wait(ctx context.Context, key string) error
}

// Backend is chosen once when the agent is built and never changes afterwards.
type Backend struct {
	Kind   BackendKind
	Remote RemoteSpec

	provider  llm.Provider
	judgments *cache.Judgments
	limiter   RateLimiter
	metrics   *Metrics

	// initErr is set when the remote backend could not be built; every
	// evaluation then fails and the agent falls back.
	initErr error
}

// Name returns the label stored on results produced by this backend
func (b *Backend) Name() string {
	if b.Kind == BackendHeuristic {
		return HeuristicName
	}
	return b.Remote.Provider
}

// Evaluate judges how well the pair's policy covers its obligation
func (b *Backend) Evaluate(ctx context.Context, pair Pair) (model.Judgment, error) {
	switch b.Kind {
	case BackendHeuristic:
		return score.Coverage(pair.Obligation.Text, pair.Policy), nil
	case BackendRemote:
		return b.evaluateRemote(ctx, pair)
	default:
		return model.Judgment{}, fmt.Errorf("unknown backend kind: %s", b.Kind)
	}
}

func (b *Backend) evaluateRemote(ctx context.Context, pair Pair) (model.Judgment, error) {
	if b.initErr != nil {
		return model.Judgment{}, b.initErr
	}
	if err := ctx.Err(); err != nil {
		return model.Judgment{}, err
	}

	prompt := llm.RenderMappingPrompt(pair.Obligation, pair.Policy)

	key := cache.JudgmentKey(b.Remote.Provider, b.Remote.Model, prompt)
	if b.judgments != nil {
		if j, ok := b.judgments.Get(key); ok {
			b.metrics.cacheHit()
			return j, nil
		}
		b.metrics.cacheMiss()
	}

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx, b.Remote.Provider); err != nil {
			return model.Judgment{}, fmt.Errorf("rate limit: %w", err)
		}
	}

	content, err := b.provider.Complete(ctx, prompt)
	if err != nil {
		return model.Judgment{}, err
	}

	j, err := llm.JudgmentFromFields(llm.ExtractJSON(content))
	if err != nil {
		return model.Judgment{}, err
	}

	_ = b.judgments.Put(key, j)
	return j, nil
}
