package api

import (
	"net/http"

	"route-optimizer-service/internal/api/handlers"
	"route-optimizer-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(geocoder *services.Geocoder, optimizer *services.Optimizer) http.Handler {
	mux := http.NewServeMux()

	geocodeHandler := &handlers.GeocodeHandler{Service: geocoder}
	optimizeHandler := &handlers.OptimizeHandler{Geocoder: geocoder, Optimizer: optimizer}
	exportHandler := &handlers.ExportHandler{Geocoder: geocoder, Optimizer: optimizer}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/api/geocode", geocodeHandler.Geocode)
	mux.HandleFunc("/api/optimize", optimizeHandler.Optimize)
	mux.HandleFunc("/api/export", exportHandler.Export)

	return loggingMiddleware(mux)
}
