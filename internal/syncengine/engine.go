// Package syncengine is a Go reference implementation of the Client Sync
// Engine (spec.md §4.5): the viewer-side logic that debounces locally
// originated control events, tracks an apply-lock to suppress the echo a
// player's own play/pause/seeked callbacks would otherwise cause, and
// applies authoritative server state with drift correction. A browser
// client reimplements the same rules in JavaScript; this package exists so
// the rules themselves — the part spec.md §8 calls out as load-bearing for
// correctness — have an executable, testable home in this repo.
package syncengine

import "time"

const (
	// quiescenceWindow is how long after applying remote state local
	// control emission stays suppressed (spec.md §4.5 "~150 ms").
	quiescenceWindow = 150 * time.Millisecond
	// debounceWindow bounds how soon an identical control payload may
	// be re-emitted.
	debounceWindow = 150 * time.Millisecond
	// driftThreshold is the |local - remote| currentTime gap that
	// forces a hard seek on apply.
	driftThreshold = 0.35
	// emitBucket is the currentTime quantization used to decide
	// whether two emitted payloads are "identical" for debounce.
	emitBucket = 0.1
)

// Engine holds one room membership's client-side sync state. It is not
// safe for concurrent use from multiple goroutines — a player's callbacks
// and the websocket read loop are expected to serialise onto it the way a
// single-threaded JS event loop would.
type Engine struct {
	now Clock

	loadedVideoID   string
	haveLoadedVideo bool

	observedVersion uint64
	local           PlaybackState
	haveLocal       bool

	pending          *PlaybackState
	applyLockedUntil time.Time

	lastEmitAction  Action
	lastEmitBucket  float64
	lastEmitAt      time.Time
	haveLastEmit    bool
}

func New(now Clock) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// LoadVideo marks a video as having reached a playable state locally
// (spec.md §4.5 "Pending buffer"). If a pending remote state was queued
// for this videoID, it is applied now and its outcome returned; otherwise
// LoadVideo returns nil.
func (e *Engine) LoadVideo(videoID string) *ApplyOutcome {
	e.loadedVideoID = videoID
	e.haveLoadedVideo = true

	if e.pending == nil || e.pending.VideoID != videoID {
		return nil
	}

	state := *e.pending
	e.pending = nil
	outcome := e.applyNow(state)
	return &outcome
}

// ApplyRemote processes one inbound authoritative PlaybackState per
// spec.md §4.5: version gate, then either apply (video already loaded) or
// queue (video not yet loaded), replacing any previously queued state.
func (e *Engine) ApplyRemote(state PlaybackState) ApplyOutcome {
	if state.Version <= e.observedVersion {
		return ApplyOutcome{}
	}

	if !e.haveLoadedVideo || e.loadedVideoID != state.VideoID {
		e.pending = &state
		return ApplyOutcome{Queued: true}
	}

	return e.applyNow(state)
}

func (e *Engine) applyNow(state PlaybackState) ApplyOutcome {
	now := e.now()

	outcome := ApplyOutcome{Applied: true}
	if e.haveLocal {
		drift := state.CurrentTime - e.local.CurrentTime
		if drift < 0 {
			drift = -drift
		}
		if drift > driftThreshold {
			outcome.DriftCorrected = true
			outcome.SeekTo = state.CurrentTime
		}
	}

	e.observedVersion = state.Version
	e.local = state
	e.haveLocal = true
	e.applyLockedUntil = now.Add(quiescenceWindow)

	return outcome
}

// Emit decides whether a locally originated control action should actually
// be sent, applying the apply-lock suppression and the emit-side debounce
// (spec.md §4.5 "Apply-lock", "Debounce", "Explicit liveness"). A nil
// return means: suppress, do not send anything.
func (e *Engine) Emit(action Action, currentTime float64, isPlaying bool) *ControlIntent {
	now := e.now()

	if now.Before(e.applyLockedUntil) {
		return nil
	}

	bucket := bucketTime(currentTime)
	if e.haveLastEmit &&
		e.lastEmitAction == action &&
		e.lastEmitBucket == bucket &&
		now.Sub(e.lastEmitAt) < debounceWindow {
		return nil
	}

	e.lastEmitAction = action
	e.lastEmitBucket = bucket
	e.lastEmitAt = now
	e.haveLastEmit = true

	return &ControlIntent{Action: action, CurrentTime: currentTime, IsPlaying: isPlaying}
}

func bucketTime(t float64) float64 {
	return float64(int64(t/emitBucket)) * emitBucket
}
