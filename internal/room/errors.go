package room

import "errors"

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrVideoMismatch  = errors.New("video mismatch")
	ErrNoCurrentVideo = errors.New("no current video loaded")
	ErrRoomClosed     = errors.New("room closed")
)
