// Package main implements the lexis HTTP server, which exposes the
// vocabulary lifecycle engine as a JSON API.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/phrazzld/lexis/internal/app"
	"github.com/phrazzld/lexis/internal/config"
	"github.com/phrazzld/lexis/internal/platform/logger"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("lexis server: %v", err)
		os.Exit(1)
	}
}

// run loads configuration, builds the application and serves until ctx is
// canceled.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver))

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			l.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	srv := newServer(a)
	return srv.Run(ctx)
}
