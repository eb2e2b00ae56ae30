// Package server assembles the HTTP surface and runs it until shutdown.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/geomcore/internal/core/config"
	"github.com/mohammed-shakir/geomcore/internal/core/health"
	middleware "github.com/mohammed-shakir/geomcore/internal/core/middleware"
	"github.com/mohammed-shakir/geomcore/internal/core/router"
)

type Deps struct {
	Handlers *router.Handlers
	// Store and Consumer back /readyz; either may be nil.
	Store    health.Pinger
	Consumer health.ReadinessReporter
	// Metrics is served on /metrics when non-nil.
	Metrics http.Handler
}

func NewHandler(cfg config.Config, logger *slog.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.MaxBody(cfg.MaxBodyBytes))
	}

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(deps.Store, deps.Consumer, cfg.RedisOpTimeout))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	if deps.Handlers != nil {
		deps.Handlers.Mount(r)
	}
	return r
}

// sets up http and starts serving
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, deps Deps) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(cfg, logger, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "err", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
