package notify

import (
	"sync"

	"github.com/gorilla/websocket"
	"sla-monitor/internal/logging"
	"sla-monitor/internal/models"
)

// Hub fans violation and notification events out to connected WebSocket
// clients (the live dashboard feed). Broken connections are dropped on
// write failure.
type Hub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]bool
	logger *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		conns:  make(map[*websocket.Conn]bool),
		logger: logger,
	}
}

// Add registers a client connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
	h.logger.Infof("WebSocket client connected (total: %d)", len(h.conns))
}

// Remove drops a client connection.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		_ = conn.Close()
		h.logger.Infof("WebSocket client disconnected (remaining: %d)", len(h.conns))
	}
}

// Broadcast sends payload as JSON to every connected client.
func (h *Hub) Broadcast(payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(payload); err != nil {
			h.logger.Warnf("WebSocket write failed, dropping client: %v", err)
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}

// PublishViolation implements sla.Publisher.
func (h *Hub) PublishViolation(v models.Violation) {
	h.Broadcast(map[string]interface{}{
		"event":     "sla_violation",
		"violation": v,
	})
}
