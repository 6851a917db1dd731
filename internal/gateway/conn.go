// Package gateway implements the Connection Gateway: it upgrades HTTP
// requests to websockets, wraps each connection in a send queue so a
// room's broadcast never blocks on a slow peer, and dispatches inbound
// frames to the room package through pkg/wsrouter.
package gateway

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// outboundQueueSize bounds the per-connection send queue; a peer slow
// enough to fill it is treated the same as a write failure (P7-adjacent
// transient-io per spec.md §7, never a reason to stall the room actor).
const outboundQueueSize = 64

var ErrSendQueueFull = errors.New("gateway: send queue full")

type wireMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Conn adapts a *websocket.Conn into room.Sender. Send only ever enqueues;
// the actual network write happens on writePump's own goroutine.
type Conn struct {
	ws     *websocket.Conn
	logger *slog.Logger

	send      chan wireMessage
	closeOnce sync.Once
	closed    chan struct{}
}

func newConn(ws *websocket.Conn, logger *slog.Logger) *Conn {
	return &Conn{
		ws:     ws,
		logger: logger,
		send:   make(chan wireMessage, outboundQueueSize),
		closed: make(chan struct{}),
	}
}

// Send implements room.Sender. It never blocks: a full queue or a closed
// connection both count as a send failure, which the room coordinator
// treats as a reason to drop this member (spec.md §4.3.6).
func (c *Conn) Send(messageType string, payload any) error {
	select {
	case <-c.closed:
		return ErrSendQueueFull
	default:
	}

	select {
	case c.send <- wireMessage{Type: messageType, Payload: payload}:
		return nil
	case <-c.closed:
		return ErrSendQueueFull
	default:
		return ErrSendQueueFull
	}
}

// Close implements room.Sender. It is safe to call more than once and
// from any goroutine.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.ws.Close()
	})
	return nil
}

// writePump drains the send queue onto the underlying connection until
// Close is called or a write fails. Callers must run it in its own
// goroutine for the lifetime of the connection.
func (c *Conn) writePump() {
	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			if err := c.ws.WriteJSON(msg); err != nil {
				c.logger.Debug("gateway: write failed, closing connection", "error", err)
				c.Close()
				return
			}
		}
	}
}
