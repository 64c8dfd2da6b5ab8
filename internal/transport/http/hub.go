package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"yardwatch/internal/bootstrap/logging"
	"yardwatch/internal/errs"
	"yardwatch/internal/ports"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from anywhere on the yard network.
	CheckOrigin: func(*http.Request) bool { return true },
}

type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub broadcasts ingestion updates to connected websocket dashboards. It
// implements ports.Notifier so it can be fanned out next to the message bus.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// HandleWS upgrades the connection and keeps it registered until the client
// goes away. Inbound frames are drained and discarded; the stream is one-way.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(r.Context(), "websocket upgrade failed", slog.Any("err", errs.Loggable(err)))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	go h.readLoop(conn)
}

func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.drop(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) PublishAlert(ctx context.Context, notification ports.AlertNotification) error {
	return h.broadcast(ctx, wsMessage{Type: "alert", Data: notification})
}

func (h *Hub) PublishTruckEvent(ctx context.Context, notification ports.TruckEventNotification) error {
	return h.broadcast(ctx, wsMessage{Type: "event", Data: notification})
}

func (h *Hub) broadcast(ctx context.Context, message wsMessage) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return errs.Wrap(err, "encode websocket message")
	}

	// Writes stay under the lock: gorilla connections allow one concurrent
	// writer, and broadcasts may come from several goroutines.
	var dead []*websocket.Conn
	h.mu.Lock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logging.Warn(ctx, "websocket write failed, dropping client", slog.Any("err", errs.Loggable(err)))
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		delete(h.clients, conn)
	}
	h.mu.Unlock()

	for _, conn := range dead {
		_ = conn.Close()
	}
	return nil
}

// ClientCount reports the number of connected dashboards.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client. Used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}
