package room

import (
	"strings"
	"time"
)

// Code is a six-character, case-folded room code: unguessable enough for
// social sharing, never treated as a credential.
type Code string

func NormalizeCode(raw string) Code {
	return Code(strings.ToUpper(strings.TrimSpace(raw)))
}

func (c Code) Valid() bool {
	if len(c) != 6 {
		return false
	}
	for _, r := range string(c) {
		isDigit := r >= '0' && r <= '9'
		isUpper := r >= 'A' && r <= 'Z'
		if !isDigit && !isUpper {
			return false
		}
	}
	return true
}

func (c Code) String() string {
	return string(c)
}

// Sender is how a Room reaches a member's connection without depending on
// the transport. The gateway's per-connection wrapper implements it; Room
// never touches a *websocket.Conn directly.
type Sender interface {
	Send(messageType string, payload any) error
	Close() error
}

// Member is the wire-facing projection of a UserHandle: everything a peer
// is allowed to learn about another member.
type Member struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// userHandle is the server-side, non-exported record: it carries the
// Sender a Member struct must never expose to other members.
type userHandle struct {
	id       string
	nickname string
	sender   Sender
}

func (u userHandle) asMember() Member {
	return Member{ID: u.id, Nickname: u.nickname}
}

type VideoDescriptor struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mime_type"`
	StorageKey string `json:"storage_key"`
}

type Action string

const (
	ActionPlay  Action = "play"
	ActionPause Action = "pause"
	ActionSeek  Action = "seek"
)

// PlaybackState is the authoritative tuple the server broadcasts. Version
// is the only ordering signal clients are allowed to trust; it is a
// process-local counter, not globally unique, and is never reset except by
// room destruction.
type PlaybackState struct {
	Version       uint64    `json:"version"`
	VideoID       string    `json:"video_id"`
	CurrentTime   float64   `json:"current_time"`
	IsPlaying     bool      `json:"is_playing"`
	LastUpdatedBy string    `json:"last_updated_by"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Nickname  string    `json:"nickname"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	System    bool      `json:"system"`
}

// State is what a joining connection receives as room-state: the full
// convergence snapshot of a Room at the moment of join.
type State struct {
	Members      []Member         `json:"members"`
	Messages     []ChatMessage    `json:"messages"`
	CurrentVideo *VideoDescriptor `json:"current_video"`
	Playback     *PlaybackState   `json:"playback"`
}
