package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/lexis/internal/app"
)

// shutdownTimeout bounds how long in-flight requests get after a stop signal.
const shutdownTimeout = 10 * time.Second

type server struct {
	srv    *http.Server
	logger *slog.Logger
}

func newServer(a *app.App) *server {
	return &server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
			Handler:           newRouter(a),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: a.Logger,
	}
}

// Run serves until ctx is canceled or the listener fails, then shuts the
// server down gracefully.
func (s *server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server shutdown completed")
	return nil
}
