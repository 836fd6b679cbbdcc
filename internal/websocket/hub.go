package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"fusiondash/internal/infrastructure"
	"fusiondash/pkg/contracts/events"
)

// broadcastQueueSize bounds pending broadcasts; further ones are dropped.
const broadcastQueueSize = 64

type outbound struct {
	msgType string
	payload []byte
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	totalConnections int64
	messagesSent     int64
	messagesDropped  int64
	slowClients      int64

	// Control
	quit    chan struct{}
	done    chan struct{}
	running bool
}

// NewHub creates a new Hub. Nil metrics record nothing.
func NewHub(metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if metrics == nil {
		metrics = infrastructure.NewNoopBusinessMetrics()
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, broadcastQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in a goroutine. A stopped hub cannot be restarted.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	select {
	case <-h.quit:
		return
	default:
	}
	h.running = true
	go h.run()
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.totalConnections++
	h.mu.Unlock()

	ctx := client.context()
	h.metrics.WebSocketConnections.Add(ctx, 1)
	h.logger.InfoContext(ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))

	welcome, err := encode(string(events.MessageTypeConnect), client.traceID, map[string]interface{}{
		"status":    "connected",
		"message":   "Connected to dashboard updates",
		"client_id": client.id,
	})
	if err != nil {
		return
	}
	select {
	case client.send <- welcome:
	default:
		h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.metrics.WebSocketConnections.Add(ctx, -1)
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", client.connectedFor()))
}

func (h *Hub) deliver(msg outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for client := range h.clients {
		select {
		case client.send <- msg.payload:
			sent++
		default:
			// A client that cannot keep up is dropped
			close(client.send)
			delete(h.clients, client)
			h.slowClients++
			h.metrics.WebSocketConnections.Add(context.Background(), -1)
			h.logger.WarnContext(client.context(), "Client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}
	h.messagesSent += int64(sent)
	h.metrics.WebSocketMessages.Add(context.Background(), int64(sent),
		metric.WithAttributes(attribute.String("type", msg.msgType)))

	h.logger.Debug("Broadcast delivered",
		slog.String("type", msg.msgType),
		slog.Int("recipients", sent),
		slog.Int("payload_size", len(msg.payload)))
}

// Broadcast queues a message for every connected client. It never blocks;
// when the queue is full the message is dropped.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	h.BroadcastWithTrace(messageType, "", data)
}

// BroadcastWithTrace is Broadcast with a trace ID stamped on the message.
func (h *Hub) BroadcastWithTrace(messageType, traceID string, data interface{}) {
	payload, err := encode(messageType, traceID, data)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", messageType))
		return
	}

	select {
	case h.broadcast <- outbound{msgType: messageType, payload: payload}:
	default:
		h.mu.Lock()
		h.messagesDropped++
		h.mu.Unlock()
		h.logger.Warn("Broadcast queue full, dropping message",
			slog.String("message_type", messageType))
	}
}

func encode(messageType, traceID string, data interface{}) ([]byte, error) {
	msg := events.NewMessage(events.MessageType(messageType), traceID, data)
	msg.ID = uuid.New().String()
	return json.Marshal(msg)
}

// Register adds a client to the hub. It reports false, without blocking,
// when the hub is not running; the caller then owns the connection.
func (h *Hub) Register(client *Client) bool {
	if !h.isRunning() {
		return false
	}
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client from the hub. It is a no-op on a hub that is
// not running.
func (h *Hub) Unregister(client *Client) {
	if !h.isRunning() {
		return
	}
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

func (h *Hub) isRunning() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every client and waits for the hub loop to exit.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

// GetHubMetrics returns current hub metrics
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
		"messages_dropped":  h.messagesDropped,
		"slow_clients":      h.slowClients,
	}
}
