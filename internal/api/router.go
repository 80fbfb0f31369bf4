// Package api exposes the extraction core and the case archive over HTTP.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/hoanghai1803/casescout/internal/api/handlers"
	"github.com/hoanghai1803/casescout/internal/config"
	"github.com/hoanghai1803/casescout/internal/pipeline"
	"github.com/hoanghai1803/casescout/internal/storage"
)

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(store *storage.Store, runner *pipeline.Runner, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)

	r.Route("/api", func(api chi.Router) {
		api.Post("/extract", handlers.ExtractHTML())
		api.Post("/refresh", handlers.Refresh(runner, cfg))

		api.Get("/cases", handlers.ListCases(store))
		api.Get("/cases/lookup", handlers.LookupCase(store))

		api.Get("/runs", handlers.ListRuns(store))
	})

	return r
}
