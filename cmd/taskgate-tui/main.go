package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayush/taskgate/internal/auth"
	"github.com/ayush/taskgate/internal/config"
	"github.com/ayush/taskgate/internal/store"
	"github.com/ayush/taskgate/internal/todo"
	"github.com/ayush/taskgate/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskgate-tui: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The screen belongs to bubbletea; storage recovery messages go nowhere
	// unless a log level of debug asks for them on stderr.
	var logOut io.Writer = io.Discard
	level, _ := cfg.SlogLevel()
	if level <= slog.LevelDebug {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeStore, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.StorageBackend, err)
	}
	defer closeStore()

	sessions := auth.NewSessionStore(kv)
	authSvc := auth.NewService(kv, sessions, auth.SchemeByName(cfg.PasswordScheme), logger)
	todoSvc := todo.NewService(kv, sessions, logger)

	return ui.Run(ctx, ui.NewModel(ctx, authSvc, todoSvc, ""))
}
