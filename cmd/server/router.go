package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/lexis/internal/api"
	apiMiddleware "github.com/phrazzld/lexis/internal/api/middleware"
	"github.com/phrazzld/lexis/internal/app"
)

// newRouter creates the application router with all routes and middleware.
func newRouter(a *app.App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(a.Logger))

	vocabulary := api.NewVocabularyHandler(a.Vocabulary, a.Config.Vocabulary.ReferenceLanguage, a.Logger)
	r.Route("/api", vocabulary.Routes)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := a.DB.PingContext(r.Context()); err != nil {
			a.Logger.Error("health check failed", slog.String("error", err.Error()))
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			a.Logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
