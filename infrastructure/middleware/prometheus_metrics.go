// Package middleware provides count observers for cross-cutting
// concerns: Prometheus metrics and OpenTelemetry tracing.
package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/liamblake/hcvote/internal/domain"
	"github.com/liamblake/hcvote/internal/ports"
)

// startTimeKey carries the count start time through the observer context.
type startTimeKey struct{}

// CountMetrics implements ports.CountObserver using Prometheus.
// It tracks count volume, outcomes, round activity, duration, and
// exhausted ballot weight.
type CountMetrics struct {
	countsStarted   *prometheus.CounterVec
	countsCompleted *prometheus.CounterVec
	roundsTotal     *prometheus.CounterVec
	countDuration   *prometheus.HistogramVec
	roundsPerCount  prometheus.Histogram
	exhaustedWeight *prometheus.GaugeVec
}

var _ ports.CountObserver = (*CountMetrics)(nil)

// NewCountMetrics creates a CountMetrics registering its collectors
// with reg. Pass prometheus.DefaultRegisterer in production; tests use
// a private registry to avoid duplicate registration.
func NewCountMetrics(reg prometheus.Registerer) *CountMetrics {
	factory := promauto.With(reg)
	return &CountMetrics{
		countsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hcvote_counts_started_total",
			Help: "Total counts started, by position.",
		}, []string{"position"}),

		countsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hcvote_counts_completed_total",
			Help: "Total counts finished, by position and outcome.",
		}, []string{"position", "outcome"}),

		roundsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hcvote_rounds_total",
			Help: "Total rounds evaluated, by action taken.",
		}, []string{"action"}),

		countDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hcvote_count_duration_seconds",
			Help:    "Wall-clock duration of a full count.",
			Buckets: prometheus.DefBuckets,
		}, []string{"position"}),

		roundsPerCount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "hcvote_rounds_per_count",
			Help:    "Number of rounds a count took to terminate.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
		}),

		exhaustedWeight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hcvote_exhausted_weight",
			Help: "Final cumulative exhausted ballot weight of the last count per position.",
		}, []string{"position"}),
	}
}

// CountStarted implements ports.CountObserver.
func (m *CountMetrics) CountStarted(ctx context.Context, info ports.CountInfo) context.Context {
	m.countsStarted.WithLabelValues(info.Position).Inc()
	return context.WithValue(ctx, startTimeKey{}, time.Now())
}

// RoundCompleted implements ports.CountObserver.
func (m *CountMetrics) RoundCompleted(ctx context.Context, info ports.CountInfo, snap domain.RoundSnapshot) {
	m.roundsTotal.WithLabelValues(string(snap.Action)).Inc()
}

// CountCompleted implements ports.CountObserver.
func (m *CountMetrics) CountCompleted(ctx context.Context, info ports.CountInfo, result *domain.Result, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.countsCompleted.WithLabelValues(info.Position, outcome).Inc()

	if start, ok := ctx.Value(startTimeKey{}).(time.Time); ok {
		m.countDuration.WithLabelValues(info.Position).Observe(time.Since(start).Seconds())
	}
	if result != nil {
		m.roundsPerCount.Observe(float64(len(result.Rounds)))
		m.exhaustedWeight.WithLabelValues(info.Position).Set(result.ExhaustedWeight)
	}
}
