package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/watchtogether/syncserver/internal/room"
)

func (g *Gateway) handleJoinRoom(ctx context.Context, conn *Conn, sess *session, p joinRoomPayload) error {
	code := room.NormalizeCode(p.RoomCode)
	if !code.Valid() {
		return fmt.Errorf("invalid room code %q", p.RoomCode)
	}

	// A connection holds at most one membership (I1): joining as a
	// different room or user first leaves the membership it already has.
	if prevCode, prevUserID, joined := sess.get(); joined && (prevCode != code || prevUserID != p.UserID) {
		if prev, ok := g.registry.Get(prevCode); ok {
			if err := prev.Leave(prevUserID); err != nil {
				g.logger.DebugContext(ctx, "leave of previous room failed", "room", string(prevCode), "user_id", prevUserID, "error", err)
			}
		}
		sess.clear()
	}

	r := g.registry.JoinOrCreate(code)

	res, err := r.Join(p.UserID, p.Nickname, conn)
	if err != nil {
		return fmt.Errorf("join room: %w", err)
	}

	sess.set(code, p.UserID)

	return conn.Send("room-state", res.State)
}

func (g *Gateway) handleLeaveRoom(ctx context.Context, sess *session, p leaveRoomPayload) error {
	code, userID, joined := sess.get()
	if !joined || string(code) != room.NormalizeCode(p.RoomCode).String() || userID != p.UserID {
		return nil
	}

	r, ok := g.registry.Get(code)
	if !ok {
		return nil
	}

	sess.clear()
	return r.Leave(userID)
}

func (g *Gateway) handleChatMessage(ctx context.Context, sess *session, p chatMessagePayload) error {
	code, userID, joined := sess.get()
	if !joined || userID != p.UserID {
		return fmt.Errorf("chat-message from unjoined or mismatched sender")
	}

	r, ok := g.registry.Get(code)
	if !ok {
		return fmt.Errorf("room %q not found", code)
	}

	return r.Chat(userID, p.Nickname, p.Text)
}

func (g *Gateway) handleVideoLoaded(ctx context.Context, conn *Conn, sess *session, p videoLoadedPayload) error {
	code, userID, joined := sess.get()
	if !joined || userID != p.UserID {
		return fmt.Errorf("video-loaded from unjoined or mismatched sender")
	}

	r, ok := g.registry.Get(code)
	if !ok {
		return fmt.Errorf("room %q not found", code)
	}

	state, err := r.VideoLoaded(userID, p.Video)
	if err != nil {
		return fmt.Errorf("video loaded: %w", err)
	}

	// The broadcast already excluded the sender (room.VideoLoaded); this
	// is the synchronous ack spec.md §4.3.3 requires.
	return conn.Send("video-loaded-ack", map[string]any{"ok": true, "version": state.Version})
}

func (g *Gateway) handleVideoControl(ctx context.Context, conn *Conn, sess *session, p videoControlPayload) error {
	code, userID, joined := sess.get()
	if !joined || userID != p.UserID {
		return fmt.Errorf("video-control from unjoined or mismatched sender")
	}

	r, ok := g.registry.Get(code)
	if !ok {
		return fmt.Errorf("room %q not found", code)
	}

	_, err := r.VideoControl(userID, p.VideoID, room.Action(p.Action), p.CurrentTime, p.IsPlaying)
	if err == nil {
		// Acceptance is acknowledged by the inclusive video-control
		// broadcast (spec.md §4.3.4); nothing further to send here.
		return nil
	}
	if errors.Is(err, room.ErrVideoMismatch) {
		return conn.Send("video-control-ack", map[string]any{"ok": false, "reason": "video-mismatch"})
	}
	return fmt.Errorf("video control: %w", err)
}
