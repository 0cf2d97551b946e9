package performance

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
)

// Tracker keeps a bounded history of completed markers and the alerts they raised.
type Tracker struct {
	completed  []Marker
	alerts     []*PerformanceAlert
	thresholds *AlertThresholds
	config     *TrackerConfig
	logger     *logging.ChanneledLogger
	active     atomic.Int64
	alertSeq   atomic.Int64
	mu         sync.RWMutex
	started    time.Time
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers          int  `json:"maxMarkers"`
	MaxAlerts           int  `json:"maxAlerts"`
	EnableDetailedStats bool `json:"enableDetailedStats"` // read runtime memory stats on completion
	EnableAlerts        bool `json:"enableAlerts"`
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:   5000,
		MaxAlerts:    500,
		EnableAlerts: true,
	}
}

// AlertThresholds defines performance thresholds for generating alerts
type AlertThresholds struct {
	VerySlowResponseThreshold time.Duration `json:"verySlowResponseThreshold"`
	CriticalResponseThreshold time.Duration `json:"criticalResponseThreshold"`

	LowCacheHitRatio      float64 `json:"lowCacheHitRatio"`
	CriticalCacheHitRatio float64 `json:"criticalCacheHitRatio"`

	// Operation-specific thresholds, matched by substring of the operation name.
	ResolutionThreshold time.Duration `json:"resolutionThreshold"`
	BatchFetchThreshold time.Duration `json:"batchFetchThreshold"`
	AuthThreshold       time.Duration `json:"authThreshold"`
}

// DefaultAlertThresholds returns sensible default alert thresholds
func DefaultAlertThresholds() *AlertThresholds {
	return &AlertThresholds{
		VerySlowResponseThreshold: time.Second * 2,
		CriticalResponseThreshold: time.Second * 5,
		LowCacheHitRatio:          0.50,
		CriticalCacheHitRatio:     0.20,
		ResolutionThreshold:       time.Millisecond * 50,
		BatchFetchThreshold:       time.Millisecond * 500,
		AuthThreshold:             time.Millisecond * 200,
	}
}

// NewTracker creates a new performance tracker. A nil logger disables alert logging.
func NewTracker(config *TrackerConfig, logger *logging.ChanneledLogger) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}
	return &Tracker{
		completed:  make([]Marker, 0),
		alerts:     make([]*PerformanceAlert, 0),
		thresholds: DefaultAlertThresholds(),
		config:     config,
		logger:     logger,
		started:    time.Now(),
	}
}

// SetThresholds replaces the alert thresholds.
func (t *Tracker) SetThresholds(thresholds *AlertThresholds) {
	if thresholds == nil {
		return
	}
	t.mu.Lock()
	t.thresholds = thresholds
	t.mu.Unlock()
}

// StartOperation creates a new marker. The marker belongs to the calling
// goroutine until it is passed to CompleteOperation.
func (t *Tracker) StartOperation(operation, ownerID string) *Marker {
	t.active.Add(1)
	return &Marker{
		Operation: operation,
		OwnerID:   ownerID,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true,
	}
}

// CompleteOperation completes the marker, records it and checks for alerts.
func (t *Tracker) CompleteOperation(marker *Marker) {
	if marker == nil || marker.Completed {
		return
	}
	marker.Complete()
	t.active.Add(-1)

	if t.config.EnableDetailedStats {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		marker.MemoryUsage = int64(memStats.Alloc)
	}

	t.mu.Lock()
	t.completed = append(t.completed, *marker)
	if len(t.completed) > t.config.MaxMarkers {
		t.completed = t.completed[len(t.completed)-t.config.MaxMarkers:]
	}
	thresholds := t.thresholds
	t.mu.Unlock()

	if t.config.EnableAlerts {
		t.checkForAlerts(marker, thresholds)
	}
}

func (t *Tracker) checkForAlerts(marker *Marker, thresholds *AlertThresholds) {
	alerts := t.evaluateThresholds(marker, thresholds)
	if len(alerts) == 0 {
		return
	}

	t.mu.Lock()
	t.alerts = append(t.alerts, alerts...)
	if len(t.alerts) > t.config.MaxAlerts {
		t.alerts = t.alerts[len(t.alerts)-t.config.MaxAlerts:]
	}
	t.mu.Unlock()

	if t.logger == nil {
		return
	}
	for _, alert := range alerts {
		t.logger.Alert().Warn(alert.Message,
			"severity", string(alert.Severity),
			"operation", alert.Operation,
			"ownerId", alert.OwnerID,
			"durationMs", alert.Actual.Milliseconds(),
			"thresholdMs", alert.Threshold.Milliseconds())
	}
}

func (t *Tracker) evaluateThresholds(marker *Marker, th *AlertThresholds) []*PerformanceAlert {
	var alerts []*PerformanceAlert

	if marker.Duration > th.CriticalResponseThreshold {
		alerts = append(alerts, t.createAlert(marker, AlertCritical, th.CriticalResponseThreshold,
			"Operation exceeded critical response time threshold"))
	} else if marker.Duration > th.VerySlowResponseThreshold {
		alerts = append(alerts, t.createAlert(marker, AlertWarning, th.VerySlowResponseThreshold,
			"Operation exceeded slow response time threshold"))
	}

	var limit time.Duration
	var label string
	switch {
	case strings.Contains(marker.Operation, "resolve"):
		limit, label = th.ResolutionThreshold, "Resolution"
	case strings.Contains(marker.Operation, "batch"):
		limit, label = th.BatchFetchThreshold, "Batch fetch"
	case strings.Contains(marker.Operation, "auth"):
		limit, label = th.AuthThreshold, "Authentication"
	}
	if limit > 0 && marker.Duration > limit {
		alerts = append(alerts, t.createAlert(marker, AlertWarning, limit,
			label+" operation exceeded threshold"))
	}

	if marker.CacheHits+marker.CacheMisses > 0 {
		hitRatio := marker.GetCacheHitRatio()
		if hitRatio < th.CriticalCacheHitRatio {
			alerts = append(alerts, t.createAlert(marker, AlertCritical, 0, "Cache hit ratio critically low"))
		} else if hitRatio < th.LowCacheHitRatio {
			alerts = append(alerts, t.createAlert(marker, AlertInfo, 0, "Cache hit ratio below optimal"))
		}
	}

	return alerts
}

func (t *Tracker) createAlert(marker *Marker, severity AlertSeverity, threshold time.Duration, message string) *PerformanceAlert {
	return &PerformanceAlert{
		ID:        fmt.Sprintf("alert_%d", t.alertSeq.Add(1)),
		Timestamp: time.Now(),
		OwnerID:   marker.OwnerID,
		Severity:  severity,
		Operation: marker.Operation,
		Threshold: threshold,
		Actual:    marker.Duration,
		Message:   message,
		Metadata: map[string]any{
			"cacheHitRatio": marker.GetCacheHitRatio(),
			"success":       marker.Success,
		},
	}
}

// GetMetrics returns completed markers for an owner, oldest first.
func (t *Tracker) GetMetrics(ownerID string) []Marker {
	return t.GetRecentMetrics(ownerID, 0)
}

// GetRecentMetrics returns markers completed within the given window. A zero
// window returns all retained markers.
func (t *Tracker) GetRecentMetrics(ownerID string, within time.Duration) []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var cutoff time.Time
	if within > 0 {
		cutoff = time.Now().Add(-within)
	}
	var metrics []Marker
	for _, marker := range t.completed {
		if marker.OwnerID == ownerID && marker.EndTime.After(cutoff) {
			metrics = append(metrics, marker)
		}
	}
	return metrics
}

// GetAlerts returns performance alerts for an owner.
func (t *Tracker) GetAlerts(ownerID string) []*PerformanceAlert {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var alerts []*PerformanceAlert
	for _, alert := range t.alerts {
		if alert.OwnerID == ownerID {
			alerts = append(alerts, alert)
		}
	}
	return alerts
}

// TakeSnapshot summarises the owner's operations from the last five minutes.
func (t *Tracker) TakeSnapshot(ownerID string) *PerformanceSnapshot {
	metrics := t.GetRecentMetrics(ownerID, time.Minute*5)

	snapshot := &PerformanceSnapshot{
		Timestamp:           time.Now(),
		OwnerID:             ownerID,
		ActiveOperations:    t.active.Load(),
		CompletedOperations: len(metrics),
		OverallHealth:       t.calculateHealth(metrics),
		AvgDuration:         "0s",
	}
	if len(metrics) == 0 {
		return snapshot
	}

	var total time.Duration
	hits, misses := 0, 0
	for i := range metrics {
		total += metrics[i].Duration
		hits += metrics[i].CacheHits
		misses += metrics[i].CacheMisses
		if snapshot.Slowest == nil || metrics[i].Duration > snapshot.Slowest.Duration {
			m := metrics[i]
			snapshot.Slowest = &m
		}
	}
	snapshot.AvgDuration = (total / time.Duration(len(metrics))).String()
	if hits+misses > 0 {
		snapshot.CacheHitRatio = float64(hits) / float64(hits+misses)
	}
	return snapshot
}

func (t *Tracker) calculateHealth(metrics []Marker) HealthStatus {
	if len(metrics) == 0 {
		return HealthUnknown
	}

	t.mu.RLock()
	th := t.thresholds
	t.mu.RUnlock()

	criticalIssues, warningIssues := 0, 0
	for _, op := range metrics {
		if op.Duration > th.CriticalResponseThreshold || !op.Success {
			criticalIssues++
		} else if op.Duration > th.VerySlowResponseThreshold {
			warningIssues++
		}
	}

	criticalRatio := float64(criticalIssues) / float64(len(metrics))
	warningRatio := float64(warningIssues) / float64(len(metrics))

	if criticalRatio > 0.1 {
		return HealthUnhealthy
	} else if criticalRatio > 0.05 || warningRatio > 0.2 {
		return HealthDegraded
	}
	return HealthHealthy
}

// GetOverallStats returns overall tracker statistics
func (t *Tracker) GetOverallStats() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return map[string]any{
		"trackerUptime":       time.Since(t.started).String(),
		"activeOperations":    t.active.Load(),
		"completedOperations": len(t.completed),
		"totalAlerts":         len(t.alerts),
	}
}
