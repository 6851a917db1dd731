// Package httpapi assembles the Gateway, the Media Store HTTP handlers,
// and the read-only room lookup into a single mux, mirroring the
// teacher's GetMux/middleware layering.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/watchtogether/syncserver/internal/gateway"
	"github.com/watchtogether/syncserver/internal/mediastore"
	"github.com/watchtogether/syncserver/internal/room"
)

type Deps struct {
	Registry     *room.Registry
	Gateway      *gateway.Gateway
	MediaHandler *mediastore.Handler
	Logger       *slog.Logger
}

func NewMux(d Deps) http.Handler {
	rh := &roomHandler{registry: d.Registry}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(requestLoggingMiddleware(d.Logger))
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		r.Handle("/ws", d.Gateway)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", d.MediaHandler.Upload)
		r.Get("/video/{storageKey}", d.MediaHandler.Stream)
		r.Post("/room", rh.Create)
		r.Get("/room/{roomCode}", rh.Get)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/storage", d.MediaHandler.ListAdmin)
			r.Delete("/cleanup", d.MediaHandler.CleanupOlderThan)
			r.Delete("/cleanup-all", d.MediaHandler.CleanupAll)
		})
	})

	return r
}
