// Package performance tracks per-operation timings and raises alerts for
// slow operations and poor cache hit ratios.
package performance

import (
	"time"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation   string         `json:"operation"` // e.g. "outfits:resolve", "items:batch"
	OwnerID     string         `json:"ownerId"`
	StartTime   time.Time      `json:"startTime"`
	EndTime     time.Time      `json:"endTime"`
	Duration    time.Duration  `json:"duration"`
	Success     bool           `json:"success"`
	Error       string         `json:"error,omitempty"`
	Metadata    map[string]any `json:"metadata"`
	MemoryUsage int64          `json:"memoryUsage"` // bytes allocated at completion, when detailed stats are on
	CacheHits   int            `json:"cacheHits"`
	CacheMisses int            `json:"cacheMisses"`
	Completed   bool           `json:"completed"`
}

// Complete marks the operation as finished and calculates its duration
func (m *Marker) Complete() {
	if m.Completed {
		return
	}
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

func (m *Marker) AddCacheHit() {
	m.CacheHits++
}

func (m *Marker) AddCacheMiss() {
	m.CacheMisses++
}

// AddCacheStats records hits and misses in bulk.
func (m *Marker) AddCacheStats(hits, misses int) {
	m.CacheHits += hits
	m.CacheMisses += misses
}

// GetCacheHitRatio returns the cache hit ratio (0.0 to 1.0)
func (m *Marker) GetCacheHitRatio() float64 {
	total := m.CacheHits + m.CacheMisses
	if total == 0 {
		return 0.0
	}
	return float64(m.CacheHits) / float64(total)
}

// PerformanceSnapshot represents a point-in-time view of an owner's operations
type PerformanceSnapshot struct {
	Timestamp           time.Time    `json:"timestamp"`
	OwnerID             string       `json:"ownerId"`
	OverallHealth       HealthStatus `json:"overallHealth"`
	ActiveOperations    int64        `json:"activeOperations"`
	CompletedOperations int          `json:"completedOperations"`
	AvgDuration         string       `json:"avgDuration"`
	CacheHitRatio       float64      `json:"cacheHitRatio"`
	Slowest             *Marker      `json:"slowest,omitempty"`
}

// HealthStatus represents the overall health of a system component
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthUnknown   HealthStatus = "unknown"
)

// PerformanceAlert represents a performance threshold violation
type PerformanceAlert struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	OwnerID   string         `json:"ownerId"`
	Severity  AlertSeverity  `json:"severity"`
	Operation string         `json:"operation"`
	Threshold time.Duration  `json:"threshold"`
	Actual    time.Duration  `json:"actual"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata"`
}

// AlertSeverity represents the severity level of a performance alert
type AlertSeverity string

const (
	AlertInfo     AlertSeverity = "info"
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)
