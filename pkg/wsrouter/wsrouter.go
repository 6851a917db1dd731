// Package wsrouter dispatches framed JSON messages read off a
// gorilla/websocket connection to per-message-type handlers, the way an
// HTTP router dispatches requests by method+path.
package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"
)

// ErrMalformed is wrapped by handler errors that originate from decoding or
// validating an inbound payload, as opposed to errors raised by business
// logic. Router.ServeConn logs both the same way: it never writes a
// response and never closes the connection over a single bad message.
var ErrMalformed = errors.New("malformed message")

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error

type Middleware func(HandlerFunc) HandlerFunc

type Router struct {
	routes     map[string]HandlerFunc
	middleware []Middleware
	logger     *slog.Logger
}

func New(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{routes: make(map[string]HandlerFunc), logger: logger}
}

func (r *Router) Use(mw Middleware) {
	r.middleware = append(r.middleware, mw)
}

func (r *Router) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

// HandleTyped registers a handler whose payload is decoded into T and, when
// validate is non-nil, validated before the handler runs. Decode/validation
// failures are reported through the same silent-drop-and-log path as an
// unknown message type.
func HandleTyped[T any](r *Router, messageType string, validate func(any) error, handler func(ctx context.Context, conn *websocket.Conn, payload T) error) {
	r.Handle(messageType, func(ctx context.Context, conn *websocket.Conn, raw json.RawMessage) error {
		var payload T
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformed, err)
			}
		}

		if validate != nil {
			if err := validate(payload); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformed, err)
			}
		}

		return handler(ctx, conn, payload)
	})
}

func (r *Router) dispatch(messageType string) (HandlerFunc, bool) {
	handler, ok := r.routes[messageType]
	if !ok {
		return nil, false
	}

	for i := len(r.middleware) - 1; i >= 0; i-- {
		handler = r.middleware[i](handler)
	}

	return handler, true
}

// ServeConn reads frames off conn until the connection errors or ctx is
// canceled. It returns the terminal read error (io.EOF on a clean close,
// a *websocket.CloseError otherwise) so the caller can run its own
// disconnect cleanup.
func (r *Router) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	// Canceling ctx closes conn, which unblocks the pending read below.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		msgCtx := withMessageType(ctx, msg.Type)

		handler, ok := r.dispatch(msg.Type)
		if !ok {
			r.logger.WarnContext(msgCtx, "unknown message type", "type", msg.Type)
			continue
		}

		if err := handler(msgCtx, conn, msg.Payload); err != nil {
			r.logger.WarnContext(msgCtx, "failed to handle message", "type", msg.Type, "error", err)
		}
	}
}
