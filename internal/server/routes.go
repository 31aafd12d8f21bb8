// Package server sets up the HTTP server and registers API routes for
// go-paperstamp.
//
// RegisterRoutes returns an http.Handler with the stamping endpoint and the
// download endpoints.
//
// Expected outputs:
// - All API endpoints are available under /api
// - CORS and logging middleware are enabled
//
// See README.md for endpoint details and integration examples.
package server

import (
	"net"
	"net/http"

	_ "go-paperstamp/docs"
	"go-paperstamp/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Only allow requests from localhost to /swagger/*
func localhostOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, _ := net.SplitHostPort(r.RemoteAddr)
		if host != "127.0.0.1" && host != "::1" && host != "localhost" {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type", handlers.DeliveryHeader, "X-Native-Bridge", "X-Native-Share"},
		ExposedHeaders: []string{handlers.DeliveryHeader, "Content-Disposition"},
	}))
	r.With(localhostOnly).Get("/swagger/*", httpSwagger.WrapHandler)
	h := handlers.NewAPIHandler(s.Stamper, s.Store, s.Fetcher, s.AllowedHosts, s.BaseURL)
	r.Route("/api", func(api chi.Router) {
		api.Post("/papers/stamp", h.StampPaper)
		api.Get("/downloads/{token}", h.DownloadArtifact)
		api.Get("/download-proxy", h.DownloadProxy)
	})

	return r
}
