package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/watchtogether/syncserver/internal/config"
	"github.com/watchtogether/syncserver/internal/gateway"
	"github.com/watchtogether/syncserver/internal/httpapi"
	"github.com/watchtogether/syncserver/internal/mediastore"
	"github.com/watchtogether/syncserver/internal/room"
	"github.com/watchtogether/syncserver/pkg/ctxlogger"
	"github.com/watchtogether/syncserver/pkg/randstr"
	"github.com/watchtogether/syncserver/pkg/redisclient"
	"github.com/watchtogether/syncserver/pkg/validator"
)

func Run(ctx context.Context, cfg *config.AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}
	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	store, err := mediastore.NewStore(cfg.UploadsDir)
	if err != nil {
		return fmt.Errorf("failed to open media store: %w", err)
	}

	mediaHandler := &mediastore.Handler{
		Store:         store,
		Index:         mediastore.NewRedisMetadataIndex(rc),
		MaxUploadSize: int64(cfg.MaxUploadSizeMB) * 1024 * 1024,
		Logger:        logger,
	}

	registry := room.NewRegistry(ctx, room.Config{
		ChatCap:       cfg.ChatCap,
		JoinChatSlice: cfg.JoinChatSlice,
		Logger:        logger,
	}).WithCodeGenerator(randstr.New([]byte(room.CodeAlphabet)))
	defer registry.Close()

	v := validator.NewValidator()
	gw := gateway.New(registry, v.ValidateErr, logger)

	mux := httpapi.NewMux(httpapi.Deps{
		Registry:     registry,
		Gateway:      gw,
		MediaHandler: mediaHandler,
		Logger:       logger,
	})

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: mux}

	reapInterval := time.Duration(cfg.ReapIntervalSeconds) * time.Second
	if reapInterval <= 0 {
		reapInterval = time.Minute
	}
	reapTicker := time.NewTicker(reapInterval)
	defer reapTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-reapTicker.C:
				registry.ReapIdle(logger)
			}
		}
	}()

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	slog.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
