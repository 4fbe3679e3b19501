package main

import (
	"log"
	"net/http"

	httphandlers "grocery/internal/interfaces/http"
	"grocery/internal/shared/config"
	"grocery/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", httphandlers.HandleHealth(deps.DB))

	mux.HandleFunc("/items", deps.ItemHandler.HandleItems)
	mux.HandleFunc("/items/{id}", deps.ItemHandler.HandleItemByID)

	// Apply global middleware, innermost first
	handler := middleware.CORS(cfg.Server.AllowedOrigins)(mux)
	handler = middleware.Tracing(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)

	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(handler)
	}

	if cfg.TLS.Enabled {
		handler = middleware.HSTS(handler)
		log.Println("TLS security middleware enabled (HSTS)")
	}

	return handler
}
