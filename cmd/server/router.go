package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/profile-api/internal/api"
	apiMiddleware "github.com/phrazzld/profile-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.InstrumentHandler)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	profileHandler := api.NewProfileHandler(
		app.profiles,
		app.logger,
		api.WithDevelopmentErrors(app.config.Server.IsDevelopment()),
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(app.limiter.Handler)

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", profileHandler.ListProfiles)
			r.Post("/", profileHandler.CreateProfile)
			r.Get("/{"+api.ProfileNameParam+"}", profileHandler.GetProfile)
			r.Put("/{"+api.ProfileNameParam+"}", profileHandler.UpdateProfile)
			r.Delete("/{"+api.ProfileNameParam+"}", profileHandler.DeleteProfile)
			r.Get("/{"+api.ProfileNameParam+"}/validate", profileHandler.ValidateParameter)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
