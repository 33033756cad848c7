// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matthewbaird/commonapply/internal/activity"
	"github.com/matthewbaird/commonapply/internal/event"
	"github.com/matthewbaird/commonapply/internal/handler"
	"github.com/matthewbaird/commonapply/internal/session"
	"github.com/matthewbaird/commonapply/internal/store"
	"github.com/matthewbaird/commonapply/internal/wire"
)

// Config holds server configuration and dependencies. Recorder may be nil.
type Config struct {
	Port            int
	ShutdownTimeout time.Duration
	JanitorInterval time.Duration

	Forms    store.Store
	Activity activity.Store
	Recorder event.Recorder
	Sessions *session.Manager
	Hub      *wire.Hub
}

// NewRouter registers every route behind the request middleware.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handler.Logging)
	r.Use(middleware.Recoverer)

	handler.Routes(r,
		handler.NewFormHandler(cfg.Forms, cfg.Recorder),
		handler.NewRuntimeHandler(cfg.Forms),
		handler.NewActivityHandler(cfg.Activity),
	)

	ws := wire.NewHandler(cfg.Sessions, cfg.Forms, cfg.Recorder, cfg.Hub)
	r.Get("/v1/forms/{id}/ws", ws.ServeHTTP)
	return r
}

// Run starts the HTTP server and blocks until ctx is cancelled and the
// server has drained.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Sessions != nil && cfg.JanitorInterval > 0 {
		go cfg.Sessions.RunJanitor(ctx, cfg.JanitorInterval)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	log.Info("shutting down server", "timeout", timeout)
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
