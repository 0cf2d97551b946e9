package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/outfitstack-go/internal/presentation/http/middleware"
)

// TelemetryHandlers streams resolution events over websockets.
type TelemetryHandlers struct {
	broadcaster *messaging.TelemetryBroadcaster
	upgrader    websocket.Upgrader
	logger      *logging.ChanneledLogger
}

// NewTelemetryHandlers creates the handler. Origins are checked against the
// same list the CORS middleware allows.
func NewTelemetryHandlers(broadcaster *messaging.TelemetryBroadcaster, allowedOrigins []string, logger *logging.ChanneledLogger) *TelemetryHandlers {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return &TelemetryHandlers{
		broadcaster: broadcaster,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// Stream upgrades the connection and blocks until the client goes away
func (h *TelemetryHandlers) Stream(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.System().Warn("Telemetry websocket upgrade failed", "ownerId", ownerID, "error", err.Error())
		return
	}
	h.broadcaster.Serve(messaging.NewTelemetryClient(conn, ownerID))
}
