package middleware

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamblake/hcvote/internal/application"
	"github.com/liamblake/hcvote/internal/domain"
	"github.com/liamblake/hcvote/internal/ports"
)

func countInfo(position string) ports.CountInfo {
	return ports.CountInfo{
		CountID:     "5b0f7a52-1b3e-4a66-9a3e-7f5f0c7e2d10",
		Position:    position,
		Candidates:  3,
		Vacancies:   1,
		TotalWeight: 5,
	}
}

func electionFixture() (application.ElectionConfig, [][]string) {
	cfg := application.ElectionConfig{
		Name:      "President",
		Vacancies: 1,
		Candidates: []domain.Candidate{
			{ID: "a"}, {ID: "b"}, {ID: "c"},
		},
	}
	rankings := [][]string{
		{"a"}, {"a"}, {"a"}, {"b", "a"}, {"c"},
	}
	return cfg, rankings
}

func TestCountMetrics_SuccessfulCount(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewCountMetrics(registry)

	cfg, rankings := electionFixture()
	result, err := application.Count(context.Background(), cfg, rankings,
		application.WithObservers(metrics))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.countsStarted.WithLabelValues("President")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.countsCompleted.WithLabelValues("President", "success")))
	assert.Zero(t, testutil.ToFloat64(metrics.countsCompleted.WithLabelValues("President", "error")))

	// Round zero plus the election round.
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.roundsTotal.WithLabelValues(string(domain.ActionFirstPreferences))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.roundsTotal.WithLabelValues(string(domain.ActionElection))))

	assert.Equal(t, result.ExhaustedWeight,
		testutil.ToFloat64(metrics.exhaustedWeight.WithLabelValues("President")))

	// Histograms carry one observation each.
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.countDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.roundsPerCount))
}

func TestCountMetrics_RepeatedCountsAccumulate(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewCountMetrics(registry)

	cfg, rankings := electionFixture()
	for i := 0; i < 3; i++ {
		_, err := application.Count(context.Background(), cfg, rankings,
			application.WithObservers(metrics))
		require.NoError(t, err)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.countsStarted.WithLabelValues("President")))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.countsCompleted.WithLabelValues("President", "success")))
}

func TestCountMetrics_ErrorOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewCountMetrics(registry)

	// Drive the observer directly with a failed completion; engine
	// construction failures never reach the observer, but a mid-count
	// invariant violation would.
	info := countInfo("Audit")
	ctx := metrics.CountStarted(context.Background(), info)
	metrics.CountCompleted(ctx, info, nil, assert.AnError)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.countsCompleted.WithLabelValues("Audit", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.countDuration),
		"duration is recorded even for failed counts")
	assert.Equal(t, 0, testutil.CollectAndCount(metrics.roundsPerCount),
		"no round histogram without a result")
}
