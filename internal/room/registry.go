// Package room implements the Room Registry and the per-room Room
// Coordinator: the server-side authority over membership, chat, the
// current-video pointer, and the authoritative, monotonically versioned
// PlaybackState for a single room.
package room

import (
	"context"
	"log/slog"
	"sync"

	"github.com/watchtogether/syncserver/pkg/randstr"
)

var defaultCodeGenerator = randstr.New([]byte(CodeAlphabet))

// codeGenerator mints room codes; satisfied by pkg/randstr.Generator.
type codeGenerator interface {
	GenerateRandomString(length int) string
}

const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// Registry maps a room code to its Room, creating on first join and
// destroying eagerly when a Room's last member leaves (I2). Creation and
// destruction are atomic with respect to lookups via a single mutex
// guarding the map — the option spec.md §5 calls out explicitly, as
// opposed to a concurrent map with per-code locking.
type Registry struct {
	mu      sync.Mutex
	rooms   map[Code]*Room
	cfg     Config
	ctx     context.Context
	cancel  context.CancelFunc
	codeGen codeGenerator
}

func NewRegistry(ctx context.Context, cfg Config) *Registry {
	ctx, cancel := context.WithCancel(ctx)
	return &Registry{
		rooms:  make(map[Code]*Room),
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// WithCodeGenerator sets the generator CreateRoom uses to mint fresh
// codes. Optional: CreateRoom falls back to a default randstr.Generator
// over CodeAlphabet if none is set.
func (reg *Registry) WithCodeGenerator(gen codeGenerator) *Registry {
	reg.codeGen = gen
	return reg
}

// CreateRoom mints a fresh, currently-unused room code and creates its
// Room, for the "host starts a new room" flow (spec.md names joinOrCreate
// as the only creation path on the wire protocol; this is the HTTP-level
// front door that hands a client a code to join with).
func (reg *Registry) CreateRoom() *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	gen := reg.codeGen
	if gen == nil {
		gen = defaultCodeGenerator
	}

	var code Code
	for {
		code = Code(gen.GenerateRandomString(codeLength))
		if _, exists := reg.rooms[code]; !exists {
			break
		}
	}

	r := New(code, reg.cfg, func() { reg.destroy(code) })
	reg.rooms[code] = r
	go r.Run(reg.ctx)
	return r
}

// JoinOrCreate returns the Room for code, creating and starting it (with
// version 0, empty chat) if it doesn't already exist.
func (reg *Registry) JoinOrCreate(code Code) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if r, ok := reg.rooms[code]; ok {
		return r
	}

	r := New(code, reg.cfg, func() { reg.destroy(code) })
	reg.rooms[code] = r
	go r.Run(reg.ctx)
	return r
}

// Get returns the Room for code without creating one.
func (reg *Registry) Get(code Code) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[code]
	return r, ok
}

// destroy is invoked by a Room from inside its own actor goroutine, once
// its member count has reached zero; it must not be called any other way,
// or I2 (a room with zero members is destroyed before the next external
// observation) would race against a concurrent join.
func (reg *Registry) destroy(code Code) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

// Count returns how many rooms are currently tracked, for metrics/admin.
func (reg *Registry) Count() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// ReapIdle is the safety net behind the immediate last-member-leaves reap:
// it force-destroys any tracked room that somehow still has zero members
// without having run its own destroy callback (Leave and broadcast
// cleanup both invoke that callback themselves when membership reaches
// zero). Intended to be called periodically by a ticker in the app's
// main loop.
//
// In practice every room with surviving, connected members is removed
// from candidacy before this ever runs, since a room destroys itself
// eagerly the moment its member count reaches zero (I2). So the rooms
// ReapIdle actually catches are narrower than "idle": rooms stuck at
// zero members that haven't yet run their own destroy callback, and
// rooms CreateRoom minted that nobody has joined yet (see
// roomHandler.Create).
//
// MemberCount round-trips a command through the room's own actor
// goroutine, so it must never be called while reg.mu is held: a room
// actor that is concurrently destroying itself (onEmpty -> reg.destroy)
// blocks on reg.mu, and if ReapIdle were holding reg.mu waiting on that
// same actor's MemberCount reply, the two would deadlock and wedge every
// other registry operation behind reg.mu. Snapshot the map, release the
// lock, probe membership, then re-lock only to delete.
func (reg *Registry) ReapIdle(logger *slog.Logger) {
	reg.mu.Lock()
	snapshot := make(map[Code]*Room, len(reg.rooms))
	for code, r := range reg.rooms {
		snapshot[code] = r
	}
	reg.mu.Unlock()

	var idle []Code
	for code, r := range snapshot {
		if r.MemberCount() == 0 {
			idle = append(idle, code)
		}
	}
	if len(idle) == 0 {
		return
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, code := range idle {
		// Only delete if the map still points at the same Room we
		// probed: a concurrent JoinOrCreate/destroy cycle may have
		// already replaced or removed this entry.
		if r, ok := reg.rooms[code]; ok && r == snapshot[code] {
			delete(reg.rooms, code)
			if logger != nil {
				logger.Info("reaped idle room", "room", string(code))
			}
		}
	}
}

// Close stops every room's actor goroutine, for graceful shutdown.
func (reg *Registry) Close() {
	reg.cancel()
}
