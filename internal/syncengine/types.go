package syncengine

import "time"

// Clock is injected so tests can control wall-clock time without sleeping,
// mirroring the room package's Clock.
type Clock func() time.Time

// PlaybackState mirrors the wire shape the Room Coordinator broadcasts
// (room.PlaybackState), kept independent so this package never imports
// server-side internals — a real client lives outside this process.
type PlaybackState struct {
	Version       uint64
	VideoID       string
	CurrentTime   float64
	IsPlaying     bool
	LastUpdatedBy string
	LastUpdatedAt time.Time
}

// Action mirrors room.Action.
type Action string

const (
	ActionPlay  Action = "play"
	ActionPause Action = "pause"
	ActionSeek  Action = "seek"
)

// ApplyOutcome tells the caller what to do to the local player after
// ApplyRemote runs.
type ApplyOutcome struct {
	// Applied is false when the state was dropped (stale) or queued
	// (video not yet loaded locally) instead of applied to the player.
	Applied bool
	// Queued is true when the state was buffered pending LoadVideo.
	Queued bool
	// DriftCorrected is true when |local - remote| exceeded the
	// threshold and the caller must hard-seek to SeekTo.
	DriftCorrected bool
	SeekTo         float64
}

// ControlIntent is what the caller should actually send as a video-control
// message, once Emit has cleared the apply-lock and debounce checks.
type ControlIntent struct {
	Action      Action
	CurrentTime float64
	IsPlaying   bool
}
