package resolution

import (
	"log/slog"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
)

// EventType names a resolution telemetry event.
type EventType string

const (
	EventResolutionCompleted EventType = "resolution_completed"
	EventResolutionFailed    EventType = "resolution_failed"
	EventHighMissingRate     EventType = "high_missing_rate"
)

// Event is a single telemetry record emitted by the orchestrator.
type Event struct {
	Type      EventType `json:"type"`
	OwnerID   string    `json:"ownerId"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

type CompletedPayload struct {
	OutfitCount   int `json:"outfitCount"`
	TotalItems    int `json:"totalItems"`
	ResolvedCount int `json:"resolvedCount"`
	MissingCount  int `json:"missingCount"`
}

type FailedPayload struct {
	ErrorCode    ErrorCode `json:"errorCode"`
	ErrorMessage string    `json:"errorMessage"`
}

type HighMissingRatePayload struct {
	MissingCount int     `json:"missingCount"`
	TotalItems   int     `json:"totalItems"`
	Rate         float64 `json:"rate"`
}

// TelemetrySink receives resolution events. Implementations must not block.
type TelemetrySink interface {
	Emit(event Event)
}

// TelemetrySinkFunc adapts a function to TelemetrySink.
type TelemetrySinkFunc func(event Event)

func (f TelemetrySinkFunc) Emit(event Event) { f(event) }

// MultiSink fans an event out to every sink in order.
type MultiSink []TelemetrySink

func (m MultiSink) Emit(event Event) {
	for _, sink := range m {
		if sink != nil {
			sink.Emit(event)
		}
	}
}

// LogSink writes events to the resolution channel, and high missing rates to alert.
type LogSink struct {
	logger *logging.ChanneledLogger
}

func NewLogSink(logger *logging.ChanneledLogger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(event Event) {
	attrs := []any{
		slog.String("event", string(event.Type)),
		slog.String("ownerId", event.OwnerID),
		slog.Any("payload", event.Payload),
	}
	switch event.Type {
	case EventHighMissingRate:
		s.logger.Alert().Warn("High missing item rate", attrs...)
	case EventResolutionFailed:
		s.logger.Resolution().Error("Resolution failed", attrs...)
	default:
		s.logger.Resolution().Info("Resolution completed", attrs...)
	}
}
