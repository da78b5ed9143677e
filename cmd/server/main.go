package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"leaveportal/internal/app/server"
	"leaveportal/internal/platform/config"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(); err != nil {
		slog.Error("leave portal stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	n, err := config.LoadEnvFiles(".env", ".env.local")
	if err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	if n > 0 {
		slog.Info("loaded env files", "count", n)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Run(ctx)
}
