package gateway

import "github.com/watchtogether/syncserver/internal/room"

type joinRoomPayload struct {
	RoomCode string `json:"roomCode" validate:"required,len=6"`
	UserID   string `json:"userId" validate:"required"`
	Nickname string `json:"nickname" validate:"required,max=20"`
}

type leaveRoomPayload struct {
	RoomCode string `json:"roomCode" validate:"required,len=6"`
	UserID   string `json:"userId" validate:"required"`
}

type chatMessagePayload struct {
	RoomCode string `json:"roomCode" validate:"required,len=6"`
	UserID   string `json:"userId" validate:"required"`
	Nickname string `json:"nickname" validate:"required,max=20"`
	Text     string `json:"text" validate:"required"`
}

type videoLoadedPayload struct {
	RoomCode string               `json:"roomCode" validate:"required,len=6"`
	UserID   string               `json:"userId" validate:"required"`
	Video    room.VideoDescriptor `json:"video"`
}

type videoControlPayload struct {
	RoomCode     string  `json:"roomCode" validate:"required,len=6"`
	UserID       string  `json:"userId" validate:"required"`
	VideoID      string  `json:"videoId" validate:"required"`
	Action       string  `json:"action" validate:"required,oneof=play pause seek"`
	CurrentTime  float64 `json:"currentTime" validate:"gte=0"`
	IsPlaying    *bool   `json:"isPlaying"`
	ClientSentAt int64   `json:"clientSentAt"`
}
