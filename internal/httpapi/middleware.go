package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/watchtogether/syncserver/pkg/ctxlogger"
)

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxlogger.AppendCtx(r.Context(), slog.String("request_id", uuid.NewString()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.InfoContext(r.Context(), "request", "method", r.Method, "url", r.URL.String(), "remote_addr", r.RemoteAddr)
			next.ServeHTTP(w, r)
		})
	}
}
