package stream

import (
	"log/slog"
	"sync"
)

// Hub tracks connected clients and fans snapshot messages out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Connection]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Connection]struct{})}
}

// Add registers a client.
func (h *Hub) Add(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// Remove unregisters a client and closes its outgoing queue.
func (h *Hub) Remove(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.Close()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to every connected client. A client whose
// send fails (queue full, encoding error) is unregistered immediately so
// later broadcasts stop paying for it. Sends happen under the read lock,
// which keeps Remove from closing a queue mid-send; removal itself needs
// the write lock and runs after.
func (h *Hub) Broadcast(msg any) {
	h.mu.RLock()
	var failed []*Connection
	for c := range h.clients {
		if err := c.Send(msg); err != nil {
			slog.Warn("dropping client", "err", err)
			failed = append(failed, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range failed {
		h.Remove(c)
	}
}
