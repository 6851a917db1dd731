package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicebob/miniredis/v2"

	"github.com/watchtogether/syncserver/internal/gateway"
	"github.com/watchtogether/syncserver/internal/httpapi"
	"github.com/watchtogether/syncserver/internal/mediastore"
	"github.com/watchtogether/syncserver/internal/room"
	"github.com/watchtogether/syncserver/pkg/validator"
)

// TestWiring_HealthzAndRoomLookup exercises the same mux Run assembles,
// without going through Run itself (which owns the process's signal
// handling and listener lifecycle).
func TestWiring_HealthzAndRoomLookup(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()

	logger := slog.Default()

	store, err := mediastore.NewStore(t.TempDir())
	require.NoError(t, err)

	mediaHandler := &mediastore.Handler{
		Store:  store,
		Index:  mediastore.NewRedisMetadataIndex(rc),
		Logger: logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := room.NewRegistry(ctx, room.Config{Logger: logger})
	defer registry.Close()

	v := validator.NewValidator()
	gw := gateway.New(registry, v.ValidateErr, logger)

	mux := httpapi.NewMux(httpapi.Deps{
		Registry:     registry,
		Gateway:      gw,
		MediaHandler: mediaHandler,
		Logger:       logger,
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/room/NOPE99")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	registry.JoinOrCreate(room.NormalizeCode("abc123"))

	resp, err = http.Get(srv.URL + "/api/room/abc123")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
