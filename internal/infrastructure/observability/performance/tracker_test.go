package performance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
)

func TestTrackerRecordsCompletedMarkers(t *testing.T) {
	tracker := NewTracker(nil, logging.NewNopLogger())

	m := tracker.StartOperation("items:list", "owner-1")
	m.AddMetadata("count", 3)
	m.AddCacheStats(3, 1)
	assert.EqualValues(t, 1, tracker.GetOverallStats()["activeOperations"])

	tracker.CompleteOperation(m)
	tracker.CompleteOperation(m)

	metrics := tracker.GetMetrics("owner-1")
	require.Len(t, metrics, 1)
	assert.True(t, metrics[0].Completed)
	assert.True(t, metrics[0].Success)
	assert.Equal(t, 3, metrics[0].Metadata["count"])
	assert.InDelta(t, 0.75, metrics[0].GetCacheHitRatio(), 0.0001)
	assert.Empty(t, tracker.GetMetrics("owner-2"))
	assert.EqualValues(t, 0, tracker.GetOverallStats()["activeOperations"])
}

func TestTrackerRaisesAlerts(t *testing.T) {
	tracker := NewTracker(nil, logging.NewNopLogger())
	tracker.SetThresholds(&AlertThresholds{
		VerySlowResponseThreshold: time.Hour,
		CriticalResponseThreshold: 2 * time.Hour,
		LowCacheHitRatio:          0.5,
		CriticalCacheHitRatio:     0.2,
		ResolutionThreshold:       time.Nanosecond,
	})

	m := tracker.StartOperation("outfits:resolve", "owner-1")
	m.AddCacheMiss()
	time.Sleep(time.Millisecond)
	tracker.CompleteOperation(m)

	alerts := tracker.GetAlerts("owner-1")
	require.Len(t, alerts, 2)
	assert.Equal(t, AlertWarning, alerts[0].Severity)
	assert.Equal(t, "Resolution operation exceeded threshold", alerts[0].Message)
	assert.Equal(t, AlertCritical, alerts[1].Severity)
	assert.NotEqual(t, alerts[0].ID, alerts[1].ID)
}

func TestTrackerBoundsRetention(t *testing.T) {
	tracker := NewTracker(&TrackerConfig{MaxMarkers: 3, MaxAlerts: 3}, nil)
	for i := 0; i < 10; i++ {
		tracker.CompleteOperation(tracker.StartOperation("items:get", "owner-1"))
	}
	assert.Len(t, tracker.GetMetrics("owner-1"), 3)
}

func TestSnapshotHealth(t *testing.T) {
	tracker := NewTracker(nil, nil)
	assert.Equal(t, HealthUnknown, tracker.TakeSnapshot("owner-1").OverallHealth)

	for i := 0; i < 9; i++ {
		tracker.CompleteOperation(tracker.StartOperation("items:get", "owner-1"))
	}
	snap := tracker.TakeSnapshot("owner-1")
	assert.Equal(t, HealthHealthy, snap.OverallHealth)
	assert.Equal(t, 9, snap.CompletedOperations)
	require.NotNil(t, snap.Slowest)

	for i := 0; i < 3; i++ {
		m := tracker.StartOperation("items:get", "owner-1")
		m.SetError(errors.New("boom"))
		tracker.CompleteOperation(m)
	}
	assert.Equal(t, HealthUnhealthy, tracker.TakeSnapshot("owner-1").OverallHealth)
}
