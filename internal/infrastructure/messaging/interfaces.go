// Package messaging streams resolution telemetry to connected clients.
package messaging

import "github.com/AtRiskMedia/outfitstack-go/internal/application/resolution"

// Broadcaster fans resolution events out to websocket clients of the same owner.
type Broadcaster interface {
	resolution.TelemetrySink
	Register(client *TelemetryClient)
	Unregister(client *TelemetryClient)
	ClientCount(ownerID string) int
}
