package mapping

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for obligation/policy evaluation.
type Metrics struct {
	PairsEvaluatedTotal *prometheus.CounterVec
	FallbacksTotal      *prometheus.CounterVec
	PairDuration        prometheus.Histogram

	// Judgment memoization
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// NewMetrics creates and registers the mapping metrics.
//
// Registration happens once per process; later calls return the same set.
//
// Metrics:
//   - regmap_pairs_evaluated_total{backend} - pairs evaluated, by the backend that produced the result
//   - regmap_backend_fallbacks_total{reason} - remote failures recovered by the heuristic
//   - regmap_pair_duration_seconds - time to evaluate one pair
//   - regmap_cache_hits_total - remote judgments served from the cache
//   - regmap_cache_misses_total - remote judgments not found in the cache
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			PairsEvaluatedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "regmap_pairs_evaluated_total",
					Help: "Total number of obligation/policy pairs evaluated",
				},
				[]string{"backend"},
			),

			FallbacksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "regmap_backend_fallbacks_total",
					Help: "Total number of remote evaluations replaced by the heuristic",
				},
				[]string{"reason"}, // "cancelled", "unsupported", "malformed", "status", "empty", "network"
			),

			PairDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "regmap_pair_duration_seconds",
					Help:    "Duration of a single pair evaluation in seconds",
					Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30},
				},
			),

			CacheHitsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "regmap_cache_hits_total",
					Help: "Total number of remote judgments served from the cache",
				},
			),

			CacheMissesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "regmap_cache_misses_total",
					Help: "Total number of remote judgments not found in the cache",
				},
			),
		}
	})
	return globalMetrics
}

func (m *Metrics) evaluated(backend string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.PairsEvaluatedTotal.WithLabelValues(backend).Inc()
	m.PairDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) fallback(reason string) {
	if m == nil {
		return
	}
	m.FallbacksTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) cacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) cacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}
