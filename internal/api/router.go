package api

import (
	_ "countryfx/docs"
	"countryfx/internal/country/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	swagger "github.com/swaggo/http-swagger"
)

// @title countryfx API
// @version 1.0
// @description Country and exchange-rate refresh service.
// @BasePath /api/v1
func NewRouter(countryHandler *handler.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	// Swagger UI
	router.Get("/swagger/*", swagger.WrapHandler)

	router.Post("/api/v1/countries/refresh", countryHandler.Refresh)
	router.Get("/api/v1/status", countryHandler.Status)
	return router
}
