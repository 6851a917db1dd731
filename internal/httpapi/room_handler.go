package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/watchtogether/syncserver/internal/room"
	"github.com/watchtogether/syncserver/internal/servererror"
	"github.com/watchtogether/syncserver/pkg/httpjson"
)

// roomHandler implements GET /api/room/<roomCode> (spec.md §6), a
// read-only lookup that never creates a room (unlike the gateway's
// join-room, which does).
type roomHandler struct {
	registry *room.Registry
}

// Create implements POST /api/room: mints a fresh room code and returns
// it, for a host that wants to start a room before anyone has joined.
//
// The returned room has zero members until someone joins it, so it is
// itself a candidate for Registry.ReapIdle's next sweep. That is
// harmless: a subsequent join-room for the same code goes through
// JoinOrCreate, which re-creates the room if the sweep beat it there.
// A host that calls this and then stalls before joining may simply see
// its code stop resolving and need to request a new one.
func (h *roomHandler) Create(w http.ResponseWriter, r *http.Request) {
	rm := h.registry.CreateRoom()
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{
		"code":      rm.Code().String(),
		"createdAt": rm.CreatedAt(),
	})
}

func (h *roomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := room.NormalizeCode(chi.URLParam(r, "roomCode"))

	rm, ok := h.registry.Get(code)
	if !ok {
		httpjson.WriteError(w, servererror.New(servererror.KindNotFound, "room not found"))
		return
	}

	state := rm.Snapshot()
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{
		"code":         code.String(),
		"userCount":    len(state.Members),
		"currentVideo": state.CurrentVideo,
		"createdAt":    rm.CreatedAt(),
	})
}
