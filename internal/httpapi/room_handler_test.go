package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchtogether/syncserver/internal/room"
)

func newTestRoomRouter(t *testing.T) (*room.Registry, *chi.Mux) {
	t.Helper()
	reg := room.NewRegistry(context.Background(), room.Config{})
	t.Cleanup(reg.Close)

	rh := &roomHandler{registry: reg}
	r := chi.NewRouter()
	r.Post("/api/room", rh.Create)
	r.Get("/api/room/{roomCode}", rh.Get)
	return reg, r
}

func TestRoomHandler_CreateThenGet(t *testing.T) {
	_, router := newTestRoomRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/room", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Len(t, created.Code, 6)

	getReq := httptest.NewRequest(http.MethodGet, "/api/room/"+created.Code, nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	assert.Equal(t, http.StatusOK, getRec.Code)
}

func TestRoomHandler_GetUnknownRoomIs404(t *testing.T) {
	_, router := newTestRoomRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/room/ZZZZZZ", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
