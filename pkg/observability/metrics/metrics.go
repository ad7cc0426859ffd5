// Package metrics defines the operation metrics recorded by services and queue workers,
// with a prometheus implementation and a no-op implementation for tests.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OperationMetrics records the lifecycle of a named service operation.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// RoundMetrics adds round outcome counters to OperationMetrics.
type RoundMetrics interface {
	OperationMetrics
	RecordOutcomesUpserted(ctx context.Context, count int)
	RecordWinnersResolved(ctx context.Context, strategy string, winners int)
}

// LeaderboardMetrics adds cache counters to OperationMetrics.
type LeaderboardMetrics interface {
	OperationMetrics
	RecordCacheHit(ctx context.Context, board string)
	RecordCacheMiss(ctx context.Context, board string)
}

// PrometheusMetrics implements RoundMetrics and LeaderboardMetrics.
type PrometheusMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec

	outcomesUpserted prometheus.Counter
	winnersResolved  *prometheus.HistogramVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
}

// NewPrometheusMetrics registers the metric families on reg under namespace/subsystem.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace, subsystem string) *PrometheusMetrics {
	factory := promauto.With(reg)
	labels := []string{"operation", "service"}

	return &PrometheusMetrics{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_attempts_total",
			Help:      "Number of service operations started.",
		}, labels),
		successes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_success_total",
			Help:      "Number of service operations that completed without an infrastructure error.",
		}, labels),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_failures_total",
			Help:      "Number of service operations that returned an error or panicked.",
		}, labels),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Duration of service operations.",
			Buckets:   prometheus.DefBuckets,
		}, labels),
		outcomesUpserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "round_outcomes_upserted_total",
			Help:      "Number of round outcome rows written.",
		}),
		winnersResolved: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "round_winners_per_resolution",
			Help:      "Number of winning teams per round resolution.",
			Buckets:   []float64{0, 1, 2, 3, 4, 8},
		}, []string{"strategy"}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "leaderboard_cache_hits_total",
			Help:      "Leaderboard cache hits.",
		}, []string{"board"}),
		cacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "leaderboard_cache_misses_total",
			Help:      "Leaderboard cache misses.",
		}, []string{"board"}),
	}
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.duration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordOutcomesUpserted(_ context.Context, count int) {
	m.outcomesUpserted.Add(float64(count))
}

func (m *PrometheusMetrics) RecordWinnersResolved(_ context.Context, strategy string, winners int) {
	m.winnersResolved.WithLabelValues(strategy).Observe(float64(winners))
}

func (m *PrometheusMetrics) RecordCacheHit(_ context.Context, board string) {
	m.cacheHits.WithLabelValues(board).Inc()
}

func (m *PrometheusMetrics) RecordCacheMiss(_ context.Context, board string) {
	m.cacheMisses.WithLabelValues(board).Inc()
}

var (
	_ RoundMetrics       = (*PrometheusMetrics)(nil)
	_ LeaderboardMetrics = (*PrometheusMetrics)(nil)
)
