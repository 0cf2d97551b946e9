package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AtRiskMedia/outfitstack-go/internal/application/resolution"
	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/observability/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 16
)

// TelemetryClient is a single websocket connection subscribed to one owner.
type TelemetryClient struct {
	Conn    *websocket.Conn
	OwnerID string
	Send    chan []byte
}

// NewTelemetryClient wraps an upgraded connection.
func NewTelemetryClient(conn *websocket.Conn, ownerID string) *TelemetryClient {
	return &TelemetryClient{Conn: conn, OwnerID: ownerID, Send: make(chan []byte, clientSendSize)}
}

// TelemetryBroadcaster is a resolution.TelemetrySink that delivers each event
// to the websocket clients registered for the event's owner.
type TelemetryBroadcaster struct {
	ownerClients map[string]map[*TelemetryClient]bool
	register     chan *TelemetryClient
	unregister   chan *TelemetryClient
	events       chan resolution.Event
	done         chan struct{}
	mu           sync.RWMutex
	logger       *logging.ChanneledLogger
}

var _ Broadcaster = (*TelemetryBroadcaster)(nil)

// NewTelemetryBroadcaster creates a broadcaster with a bounded event queue.
func NewTelemetryBroadcaster(bufferSize int, logger *logging.ChanneledLogger) *TelemetryBroadcaster {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &TelemetryBroadcaster{
		ownerClients: make(map[string]map[*TelemetryClient]bool),
		register:     make(chan *TelemetryClient),
		unregister:   make(chan *TelemetryClient),
		events:       make(chan resolution.Event, bufferSize),
		done:         make(chan struct{}),
		logger:       logger,
	}
}

// Run is the broadcaster's main loop. It returns when ctx is cancelled,
// closing every client's send channel.
func (b *TelemetryBroadcaster) Run(ctx context.Context) {
	defer b.shutdown()
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-b.register:
			b.mu.Lock()
			if _, ok := b.ownerClients[client.OwnerID]; !ok {
				b.ownerClients[client.OwnerID] = make(map[*TelemetryClient]bool)
			}
			b.ownerClients[client.OwnerID][client] = true
			b.mu.Unlock()
			b.logger.System().Debug("Telemetry client registered", "ownerId", client.OwnerID)

		case client := <-b.unregister:
			b.remove(client)
			b.logger.System().Debug("Telemetry client unregistered", "ownerId", client.OwnerID)

		case event := <-b.events:
			b.deliver(event)
		}
	}
}

// Emit queues an event without blocking. Events are dropped when the queue is full.
func (b *TelemetryBroadcaster) Emit(event resolution.Event) {
	select {
	case b.events <- event:
	default:
		b.logger.System().Warn("Telemetry queue full, event dropped",
			"event", string(event.Type), "ownerId", event.OwnerID)
	}
}

// Register queues a client for registration.
func (b *TelemetryBroadcaster) Register(client *TelemetryClient) {
	select {
	case b.register <- client:
	case <-b.done:
		close(client.Send)
	}
}

// Unregister queues a client for unregistration.
func (b *TelemetryBroadcaster) Unregister(client *TelemetryClient) {
	select {
	case b.unregister <- client:
	case <-b.done:
	}
}

// ClientCount returns the number of connected clients for an owner.
func (b *TelemetryBroadcaster) ClientCount(ownerID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.ownerClients[ownerID])
}

// Serve registers the client and pumps messages until the connection closes.
// It blocks for the lifetime of the connection.
func (b *TelemetryBroadcaster) Serve(client *TelemetryClient) {
	b.Register(client)
	go b.readPump(client)
	b.writePump(client)
}

func (b *TelemetryBroadcaster) deliver(event resolution.Event) {
	message, err := json.Marshal(event)
	if err != nil {
		b.logger.System().Error("Error marshaling telemetry event", "error", err, "ownerId", event.OwnerID)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.ownerClients[event.OwnerID] {
		select {
		case client.Send <- message:
		default:
			b.logger.System().Warn("Telemetry client send buffer full, message dropped", "ownerId", event.OwnerID)
		}
	}
}

func (b *TelemetryBroadcaster) remove(client *TelemetryClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if clients, ok := b.ownerClients[client.OwnerID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.Send)
			if len(clients) == 0 {
				delete(b.ownerClients, client.OwnerID)
			}
		}
	}
}

func (b *TelemetryBroadcaster) shutdown() {
	close(b.done)
	b.mu.Lock()
	defer b.mu.Unlock()
	for ownerID, clients := range b.ownerClients {
		for client := range clients {
			close(client.Send)
		}
		delete(b.ownerClients, ownerID)
	}
}

// readPump discards inbound messages and unregisters the client on close.
func (b *TelemetryBroadcaster) readPump(client *TelemetryClient) {
	defer func() {
		b.Unregister(client)
		client.Conn.Close()
	}()
	client.Conn.SetReadLimit(512)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *TelemetryBroadcaster) writePump(client *TelemetryClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
