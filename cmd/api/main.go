package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"archiveapi/internal/archive"
	"archiveapi/internal/config"
	"archiveapi/internal/logging"
	"archiveapi/internal/platform/archiveorg"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})

	handler, cleanup := newHandler(cfg)
	defer cleanup()

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", cfg.Server.Addr).
			Str("search_url", cfg.Archive.SearchURL).
			Msg("starting server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server error")
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

// newHandler wires the upstream client, the service and the router from cfg.
func newHandler(cfg config.Config) (http.Handler, func()) {
	client := archiveorg.NewClient(archiveorg.Config{
		SearchURL:       cfg.Archive.SearchURL,
		MetadataURL:     cfg.Archive.MetadataURL,
		UserAgent:       cfg.Archive.UserAgent,
		Timeout:         cfg.Archive.Timeout,
		RPS:             cfg.Archive.RPS,
		Burst:           cfg.Archive.Burst,
		BreakerFailures: cfg.Breaker.Failures,
		BreakerTimeout:  cfg.Breaker.Timeout,
	})

	svc := archive.NewService(client, archive.Config{
		ImageBaseURL:    cfg.Archive.ImageURL,
		DownloadBaseURL: cfg.Archive.DownloadURL,
	})

	return newRouter(cfg, svc, client)
}
