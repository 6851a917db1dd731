package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/watchtogether/syncserver/internal/room"
	"github.com/watchtogether/syncserver/pkg/ctxlogger"
	"github.com/watchtogether/syncserver/pkg/wsrouter"
)

// Gateway upgrades HTTP connections to websockets and serves the room
// protocol over them. It never touches a Room's fields directly; every
// mutation goes through the Registry's Room methods (spec.md §3
// "Ownership").
type Gateway struct {
	registry *room.Registry
	validate func(any) error
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func New(registry *room.Registry, validate func(any) error, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		registry: registry,
		validate: validate,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// session holds the single room membership a connection may hold at once
// (I1). It is touched from this connection's own read loop goroutine and
// from the disconnect that runs after it; the mutex guards every access.
type session struct {
	mu       sync.Mutex
	roomCode room.Code
	userID   string
	joined   bool
}

func (s *session) set(code room.Code, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomCode, s.userID, s.joined = code, userID, true
}

func (s *session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joined = false
}

func (s *session) get() (room.Code, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomCode, s.userID, s.joined
}

// ServeHTTP upgrades the request and serves the room protocol until the
// connection closes or the request context is canceled.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	conn := newConn(ws, g.logger)
	go conn.writePump()

	sess := &session{}
	router := g.buildRouter(conn, sess)

	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("ws_request_id", uuid.NewString()))

	if err := router.ServeConn(ctx, ws); err != nil {
		g.logger.DebugContext(ctx, "connection read loop ended", "error", err)
	}

	g.disconnect(ctx, sess)
	conn.Close()
}

// buildRouter registers the spec.md §4.1 message kinds. Handlers close
// over this single connection's wrapper and session instead of reading
// the raw *websocket.Conn the router hands them, since the room package
// only ever talks back through the room.Sender interface.
func (g *Gateway) buildRouter(conn *Conn, sess *session) *wsrouter.Router {
	router := wsrouter.New(g.logger)

	wsrouter.HandleTyped(router, "join-room", g.validate, func(ctx context.Context, _ *websocket.Conn, p joinRoomPayload) error {
		return g.handleJoinRoom(ctx, conn, sess, p)
	})
	wsrouter.HandleTyped(router, "leave-room", g.validate, func(ctx context.Context, _ *websocket.Conn, p leaveRoomPayload) error {
		return g.handleLeaveRoom(ctx, sess, p)
	})
	wsrouter.HandleTyped(router, "chat-message", g.validate, func(ctx context.Context, _ *websocket.Conn, p chatMessagePayload) error {
		return g.handleChatMessage(ctx, sess, p)
	})
	wsrouter.HandleTyped(router, "video-loaded", g.validate, func(ctx context.Context, _ *websocket.Conn, p videoLoadedPayload) error {
		return g.handleVideoLoaded(ctx, conn, sess, p)
	})
	wsrouter.HandleTyped(router, "video-control", g.validate, func(ctx context.Context, _ *websocket.Conn, p videoControlPayload) error {
		return g.handleVideoControl(ctx, conn, sess, p)
	})

	return router
}

// disconnect enqueues the synthetic leave-room spec.md §4.1 requires on
// transport-level close.
func (g *Gateway) disconnect(ctx context.Context, sess *session) {
	code, userID, joined := sess.get()
	if !joined {
		return
	}

	r, ok := g.registry.Get(code)
	if !ok {
		return
	}

	if err := r.Leave(userID); err != nil {
		g.logger.DebugContext(ctx, "leave on disconnect failed", "room", string(code), "user_id", userID, "error", err)
	}
	sess.clear()
}
