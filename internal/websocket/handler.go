package websocket

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"fusiondash/internal/config"
	"fusiondash/internal/infrastructure"
)

// Handler upgrades HTTP requests and attaches the connection to the hub.
type Handler struct {
	hub            *Hub
	upgrader       websocket.Upgrader
	clientCfg      ClientConfig
	allowedOrigins map[string]bool
	logger         *slog.Logger
}

// NewHandler creates an upgrade handler. Requests without an Origin header,
// same-host origins and allowedOrigins are accepted.
func NewHandler(hub *Hub, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	h := &Handler{
		hub:            hub,
		clientCfg:      ClientConfigFrom(cfg),
		allowedOrigins: make(map[string]bool, len(allowedOrigins)),
		logger:         logger.With(slog.String("component", "websocket.handler")),
	}
	for _, o := range allowedOrigins {
		h.allowedOrigins[o] = true
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.logger.WarnContext(r.Context(), "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			http.Error(w, http.StatusText(status), status)
		},
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigins[origin] {
		return true
	}
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	h.logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
		slog.String("origin", origin))
	return false
}

// ServeHTTP upgrades the connection and starts the client pumps.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := NewClient(h.hub, conn, infrastructure.GetTraceID(r.Context()), h.clientCfg, h.logger)
	if !h.hub.Register(client) {
		h.logger.WarnContext(r.Context(), "WebSocket hub not running, closing connection")
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
