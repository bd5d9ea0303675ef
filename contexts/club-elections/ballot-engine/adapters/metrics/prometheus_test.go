package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTelemetryCountsOutcomesAndRetries(t *testing.T) {
	registry := prometheus.NewRegistry()
	telemetry, err := NewTelemetry(registry)
	require.NoError(t, err)

	telemetry.RecordOutcome("cast_vote", "accepted")
	telemetry.RecordOutcome("cast_vote", "accepted")
	telemetry.RecordOutcome("cast_vote", "duplicate_vote")
	telemetry.RecordRetry("promote")

	require.Equal(t, 2.0, testutil.ToFloat64(telemetry.outcomes.WithLabelValues("cast_vote", "accepted")))
	require.Equal(t, 1.0, testutil.ToFloat64(telemetry.outcomes.WithLabelValues("cast_vote", "duplicate_vote")))
	require.Equal(t, 1.0, testutil.ToFloat64(telemetry.retries.WithLabelValues("promote")))
	require.Equal(t, 3, testutil.CollectAndCount(telemetry.outcomes)+testutil.CollectAndCount(telemetry.retries))
}

func TestNewTelemetryRejectsDoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewTelemetry(registry)
	require.NoError(t, err)
	_, err = NewTelemetry(registry)
	require.Error(t, err)
}
