// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/infra/config"
	"storefront/internal/infra/logging"
	"storefront/internal/platform/di"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logging.For("boot").Fatalf("[boot] config: %v", err)
	}

	// ─────────────────────────────────────────────────────────────
	// Log output: stdout (+ rotating file when LOG_FILE is set)
	// ─────────────────────────────────────────────────────────────
	logging.Init(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON || cfg.IsProduction(), File: cfg.LogFile})
	log := logging.For("boot")

	// ─────────────────────────────────────────────────────────────
	// DI container & heavy deps
	// ─────────────────────────────────────────────────────────────
	cont, err := di.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("[boot] di init failed: %v", err)
	}
	defer cont.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           cont.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second, // image uploads
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// ─────────────────────────────────────────────────────────────
	// Graceful shutdown
	// ─────────────────────────────────────────────────────────────
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c
		log.Infof("[boot] received signal: %v; shutting down...", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("[boot] server shutdown error: %v", err)
		}
		close(idleConnsClosed)
	}()

	log.WithField("env", cfg.AppEnv).Infof("[boot] listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[boot] server error: %v", err)
	}

	<-idleConnsClosed
	log.Info("[boot] server stopped")
}
