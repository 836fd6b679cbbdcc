package websocket

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"fusiondash/internal/config"
	"fusiondash/internal/infrastructure"
)

const (
	// Maximum message size allowed from peer
	maxMessageSize = 512

	sendBufferSize = 16

	heartbeatMessage = `{"type":"heartbeat"}`
)

// ClientConfig holds the keepalive timings of a client connection.
type ClientConfig struct {
	WriteWait  time.Duration
	PongWait   time.Duration
	PingPeriod time.Duration
}

// DefaultClientConfig returns the standard timings.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		WriteWait:  10 * time.Second,
		PongWait:   60 * time.Second,
		PingPeriod: 54 * time.Second,
	}
}

// ClientConfigFrom takes timings from configuration, keeping defaults for
// unset values. PingPeriod is forced below PongWait.
func ClientConfigFrom(cfg config.WebSocketConfig) ClientConfig {
	cc := DefaultClientConfig()
	if cfg.WriteWait > 0 {
		cc.WriteWait = cfg.WriteWait
	}
	if cfg.PongWait > 0 {
		cc.PongWait = cfg.PongWait
	}
	if cfg.PingPeriod > 0 {
		cc.PingPeriod = cfg.PingPeriod
	}
	if cc.PingPeriod >= cc.PongWait {
		cc.PingPeriod = (cc.PongWait * 9) / 10
	}
	return cc
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn Connection
	cfg  ClientConfig

	// Buffered channel of outbound messages
	send chan []byte

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger *slog.Logger
}

// NewClient creates a client for conn. traceID ties its log lines to the
// upgrade request.
func NewClient(hub *Hub, conn Connection, traceID string, cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	remote := ""
	if addr := conn.RemoteAddr(); addr != nil {
		remote = addr.String()
	}

	return &Client{
		hub:         hub,
		conn:        conn,
		cfg:         cfg,
		send:        make(chan []byte, sendBufferSize),
		id:          id,
		traceID:     traceID,
		remoteAddr:  remote,
		connectedAt: time.Now(),
		logger: logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id),
		),
	}
}

// ID returns the client's unique ID.
func (c *Client) ID() string {
	return c.id
}

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

func (c *Client) connectedFor() time.Duration {
	return time.Since(c.connectedAt)
}

// ReadPump reads until the connection fails, then unregisters the client.
// Incoming messages other than heartbeats are ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WarnContext(c.context(), "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		if string(bytes.TrimSpace(message)) == heartbeatMessage {
			c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
			continue
		}
		c.logger.DebugContext(c.context(), "Ignoring client message", slog.Int("size", len(message)))
	}
}

// WritePump sends queued messages and pings until the hub closes the send
// channel or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.WarnContext(c.context(), "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.context(), "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
