// Package stream broadcasts per-tick simulation snapshots to WebSocket
// clients and routes their control messages back to the owner.
package stream

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gorilla/websocket"
)

// ErrSendQueueFull is returned by Send when a client's outgoing queue is
// full. The hub treats it as fatal for the client.
var ErrSendQueueFull = errors.New("outgoing queue full")

// Connection wraps one WebSocket client with a buffered outgoing queue,
// so a slow client never blocks the simulation loop.
type Connection struct {
	ws   *websocket.Conn
	send chan []byte
}

// NewConnection wraps an upgraded WebSocket connection.
func NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// MessageHandler receives each inbound client message.
type MessageHandler interface {
	HandleMessage(conn *Connection, message []byte)
}

// ReadPump reads client messages until the connection drops. It blocks;
// run it on the goroutine that owns the connection's lifetime.
func (c *Connection) ReadPump(h MessageHandler) {
	defer c.ws.Close()
	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read", "err", err)
			}
			return
		}
		h.HandleMessage(c, message)
	}
}

// WritePump drains the outgoing queue to the socket. Run as a goroutine
// per connection.
func (c *Connection) WritePump() {
	defer c.ws.Close()
	for message := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.ws.WriteMessage(websocket.CloseMessage, []byte{})
}

// Send queues a JSON-encoded message. A full queue means the client has
// stopped draining; Send reports it so the caller can unregister the
// connection rather than let it apply backpressure.
func (c *Connection) Send(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close shuts the outgoing queue; WritePump then closes the socket.
func (c *Connection) Close() {
	close(c.send)
}
