package mapping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/regmap/internal/cache"
	"github.com/ppiankov/regmap/internal/llm"
	"github.com/ppiankov/regmap/internal/logging"
	"github.com/ppiankov/regmap/internal/model"
	"github.com/ppiankov/regmap/internal/score"
)

// ErrMisconfigured is returned by NewAgent when a remote provider is named
// but no client can be built for it.
var ErrMisconfigured = errors.New("mapping backend misconfigured")

// Agent maps one obligation to one policy. Remote failures never escape
// MapOne; the pair is scored by the heuristic instead.
type Agent struct {
	backend *Backend
	logger  *zap.Logger
	metrics *Metrics
}

type agentOptions struct {
	logger    *zap.Logger
	metrics   *Metrics
	judgments *cache.Judgments
	limiter   RateLimiter
	provider  llm.Provider
}

// Option configures an Agent
type Option func(*agentOptions)

// WithLogger sets the logger used for fallback warnings
func WithLogger(logger *zap.Logger) Option {
	return func(o *agentOptions) { o.logger = logger }
}

// WithMetrics records evaluations and fallbacks
func WithMetrics(m *Metrics) Option {
	return func(o *agentOptions) { o.metrics = m }
}

// WithJudgmentCache memoizes remote judgments
func WithJudgmentCache(j *cache.Judgments) Option {
	return func(o *agentOptions) { o.judgments = j }
}

// WithRateLimiter paces remote calls, keyed by provider name
func WithRateLimiter(l RateLimiter) Option {
	return func(o *agentOptions) { o.limiter = l }
}

// WithProvider uses p as the remote backend regardless of cfg.Provider
func WithProvider(p llm.Provider) Option {
	return func(o *agentOptions) { o.provider = p }
}

// NewAgent selects the backend for cfg. An empty provider name selects the
// heuristic backend.
func NewAgent(cfg llm.Config, opts ...Option) (*Agent, error) {
	var o agentOptions
	for _, opt := range opts {
		opt(&o)
	}

	backend, err := newBackend(cfg, o)
	if err != nil {
		return nil, err
	}
	backend.judgments = o.judgments
	backend.limiter = o.limiter
	backend.metrics = o.metrics

	logger := logging.OrNop(o.logger)
	if backend.initErr != nil {
		logger.Warn("remote backend unavailable, all pairs will use the heuristic",
			zap.String("provider", backend.Remote.Provider),
			zap.Error(backend.initErr))
	}

	return &Agent{
		backend: backend,
		logger:  logger,
		metrics: o.metrics,
	}, nil
}

func newBackend(cfg llm.Config, o agentOptions) (*Backend, error) {
	if o.provider != nil {
		return &Backend{
			Kind:     BackendRemote,
			Remote:   RemoteSpec{Provider: o.provider.Name(), Model: o.provider.Model(), Endpoint: cfg.BaseURL},
			provider: o.provider,
		}, nil
	}

	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		return &Backend{Kind: BackendHeuristic}, nil
	}

	provider, err := llm.NewProvider(cfg)
	switch {
	case errors.Is(err, llm.ErrUnsupportedProvider):
		return &Backend{
			Kind:    BackendRemote,
			Remote:  RemoteSpec{Provider: name, Model: cfg.Model, Endpoint: cfg.BaseURL},
			initErr: err,
		}, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrMisconfigured, err)
	}

	return &Backend{
		Kind:     BackendRemote,
		Remote:   RemoteSpec{Provider: provider.Name(), Model: provider.Model(), Endpoint: cfg.BaseURL},
		provider: provider,
	}, nil
}

// Backend returns the backend selected at construction
func (a *Agent) Backend() *Backend {
	return a.backend
}

// BackendName returns the label results carry when no fallback happened
func (a *Agent) BackendName() string {
	return a.backend.Name()
}

// MapOne evaluates one pair. It always returns a result.
func (a *Agent) MapOne(ctx context.Context, o model.ObligationInput, p model.PolicyRecord) model.MappingResult {
	start := time.Now()
	o = o.Normalize()

	backend := a.backend.Name()
	j, err := a.backend.Evaluate(ctx, Pair{Obligation: o, Policy: p})
	if err != nil {
		reason := fallbackReason(err)
		a.logger.Warn("remote evaluation failed, using heuristic",
			zap.String("obligation_id", o.ID),
			zap.String("policy_id", p.ID),
			zap.String("backend", backend),
			zap.String("reason", reason),
			zap.Error(err))
		a.metrics.fallback(reason)

		j = score.Coverage(o.Text, p)
		backend = HeuristicName
	}

	a.metrics.evaluated(backend, time.Since(start))
	return model.NewMappingResult(o, p, j, backend)
}

func fallbackReason(err error) string {
	var statusErr *llm.StatusError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, llm.ErrUnsupportedProvider):
		return "unsupported"
	case errors.Is(err, llm.ErrMalformedJudgment):
		return "malformed"
	case errors.Is(err, llm.ErrEmptyResponse):
		return "empty"
	case errors.As(err, &statusErr):
		return "status"
	default:
		return "network"
	}
}
