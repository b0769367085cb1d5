package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ayush/taskgate/internal/auth"
	"github.com/ayush/taskgate/internal/config"
	"github.com/ayush/taskgate/internal/server"
	"github.com/ayush/taskgate/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// ── Storage ──────────────────────────────────────────────
	kv, closeStore, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		logger.Error("storage open", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	logger.Info("storage ready", "backend", cfg.StorageBackend)

	// ── Router ───────────────────────────────────────────────
	handler := server.New(server.Deps{
		KV:             kv,
		Passwords:      auth.SchemeByName(cfg.PasswordScheme),
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
		RequestLog:     true,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("taskgate listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
