package room

import (
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// JoinResult is returned to the gateway so it can write room-state to the
// joining connection; the user-joined/user-count-update broadcast to
// everyone else already happened by the time this returns.
type JoinResult struct {
	State State
}

// Join admits userID (replacing any prior handle with the same id — a
// reconnect) and returns the snapshot the joiner needs for room-state.
func (r *Room) Join(userID, nickname string, sender Sender) (JoinResult, error) {
	var res JoinResult

	err := r.exec(func() {
		if prev, exists := r.members[userID]; exists {
			// Same userId already present: evict the stale handle and
			// close its connection right away; the new handle takes its
			// place in the member order.
			prev.sender.Close()
		} else {
			r.order = append(r.order, userID)
		}

		r.members[userID] = &userHandle{id: userID, nickname: nickname, sender: sender}

		res.State = r.snapshotLocked()

		r.broadcastExcept(userID, "user-joined", map[string]any{
			"user":       Member{ID: userID, Nickname: nickname},
			"user_count": len(r.members),
		})
		r.broadcastExcept(userID, "user-count-update", map[string]any{"count": len(r.members)})
	})

	return res, err
}

// Leave removes userID's membership, broadcasts the departure, and — if
// that was the last member — invokes onEmpty (the registry's destroy hook)
// and stops the room's actor.
func (r *Room) Leave(userID string) error {
	return r.exec(func() {
		if _, exists := r.members[userID]; !exists {
			return
		}

		delete(r.members, userID)
		r.removeFromOrder(userID)

		r.broadcastAll("user-left", map[string]any{
			"user_id":    userID,
			"user_count": len(r.members),
		})
		r.broadcastAll("user-count-update", map[string]any{"count": len(r.members)})

		if len(r.members) == 0 {
			r.closed = true
			if r.onEmpty != nil {
				r.onEmpty()
			}
		}
	})
}

// MemberCount reports the current membership size, used by the registry's
// idle reaper and the /api/room lookup.
func (r *Room) MemberCount() int {
	var n int
	r.exec(func() { n = len(r.members) })
	return n
}

// Snapshot returns the room-state view without mutating anything, used by
// GET /api/room/<code>.
func (r *Room) Snapshot() State {
	var s State
	r.exec(func() { s = r.snapshotLocked() })
	return s
}

func (r *Room) snapshotLocked() State {
	members := make([]Member, 0, len(r.order))
	for _, id := range r.order {
		if m, ok := r.members[id]; ok {
			members = append(members, m.asMember())
		}
	}

	slice := r.chat
	if len(slice) > r.cfg.JoinChatSlice {
		slice = slice[len(slice)-r.cfg.JoinChatSlice:]
	}
	messages := make([]ChatMessage, len(slice))
	copy(messages, slice)

	state := State{Members: members, Messages: messages}
	if r.currentVideo != nil {
		v := *r.currentVideo
		state.CurrentVideo = &v
	}
	if r.hasPlayback {
		p := r.playback
		state.Playback = &p
	}
	return state
}

// Chat appends a server-timestamped ChatMessage and broadcasts it to every
// member, including the sender.
func (r *Room) Chat(userID, nickname, text string) error {
	return r.exec(func() {
		msg := ChatMessage{
			ID:        uuid.NewString(),
			UserID:    userID,
			Nickname:  nickname,
			Text:      text,
			Timestamp: r.cfg.Now(),
		}

		r.chat = append(r.chat, msg)
		if len(r.chat) > r.cfg.ChatCap {
			r.chat = r.chat[len(r.chat)-r.cfg.ChatCap:]
		}

		r.broadcastAll("chat-message", msg)
	})
}

// VideoLoaded overwrites the room's current video and resets playback to
// paused at t=0 under a fresh version. It broadcasts video-loaded to every
// member except the sender; the sender's own acknowledgement (carrying the
// new version) is the PlaybackState this method returns.
func (r *Room) VideoLoaded(userID string, video VideoDescriptor) (PlaybackState, error) {
	var newState PlaybackState

	err := r.exec(func() {
		r.currentVideo = &video
		r.hasPlayback = true

		r.playback = PlaybackState{
			Version:       r.playback.Version + 1,
			VideoID:       video.ID,
			CurrentTime:   0,
			IsPlaying:     false,
			LastUpdatedBy: userID,
			LastUpdatedAt: r.cfg.Now(),
		}
		newState = r.playback

		r.broadcastExcept(userID, "video-loaded", map[string]any{
			"video": video,
			"state": newState,
			"user":  r.memberOrEmpty(userID),
		})
	})

	return newState, err
}

// VideoControl applies a play/pause/seek action if and only if videoID
// matches the room's current playback.videoID (spec's acceptance rule);
// otherwise it leaves state untouched and returns ErrVideoMismatch. An
// accepted control bumps the version and broadcasts video-control to every
// member, including the originator — that broadcast doubles as the
// originator's acknowledgement.
func (r *Room) VideoControl(userID, videoID string, action Action, currentTime float64, isPlaying *bool) (PlaybackState, error) {
	var newState PlaybackState
	var mismatch error

	err := r.exec(func() {
		if !r.hasPlayback || videoID != r.playback.VideoID {
			mismatch = ErrVideoMismatch
			return
		}

		next := r.playback
		next.Version++
		next.LastUpdatedBy = userID
		next.LastUpdatedAt = r.cfg.Now()

		switch action {
		case ActionPlay:
			next.IsPlaying = true
			next.CurrentTime = currentTime
		case ActionPause:
			next.IsPlaying = false
			next.CurrentTime = currentTime
		case ActionSeek:
			next.CurrentTime = currentTime
			if isPlaying != nil {
				next.IsPlaying = *isPlaying
			}
			// else: inherits current isPlaying, already copied into next.
		}

		r.playback = next
		newState = next

		r.broadcastAll("video-control", map[string]any{"state": newState})
	})

	if err != nil {
		return PlaybackState{}, err
	}
	if mismatch != nil {
		return PlaybackState{}, mismatch
	}
	return newState, nil
}

func (r *Room) memberOrEmpty(userID string) Member {
	if m, ok := r.members[userID]; ok {
		return m.asMember()
	}
	return Member{ID: userID}
}

func (r *Room) removeFromOrder(userID string) {
	if i := slices.Index(r.order, userID); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
}

// broadcastAll and broadcastExcept run inside the actor goroutine; a send
// failure to one member is logged and that member is dropped from the
// room immediately (the gateway will observe its connection close and
// deliver a synthetic leave, but we don't wait for that round-trip to stop
// counting it against membership).
func (r *Room) broadcastAll(messageType string, payload any) {
	r.broadcastExcept("", messageType, payload)
}

func (r *Room) broadcastExcept(exceptUserID, messageType string, payload any) {
	var dead []string

	for _, id := range r.order {
		if id == exceptUserID {
			continue
		}
		m, ok := r.members[id]
		if !ok {
			continue
		}
		if err := m.sender.Send(messageType, payload); err != nil {
			r.cfg.Logger.Warn("broadcast write failed, dropping member",
				"room", string(r.code), "user_id", id, "error", err)
			dead = append(dead, id)
		}
	}

	for _, id := range dead {
		if m, ok := r.members[id]; ok {
			m.sender.Close()
		}
		delete(r.members, id)
		r.removeFromOrder(id)
	}

	if len(dead) > 0 && len(r.members) == 0 {
		r.closed = true
		if r.onEmpty != nil {
			r.onEmpty()
		}
	}
}
