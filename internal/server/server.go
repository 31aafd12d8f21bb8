// Package server provides the HTTP server setup for go-paperstamp.
//
// NewServer creates and configures the HTTP server, the stamping engine,
// the artifact store, and the output directory.
//
// Expected outputs:
// - Server listens on the configured port (default 8080)
// - Expired stamped artifacts are swept periodically
//
// Usage:
//
//	server := server.NewServer()
//	server.ListenAndServe()
//
// See internal/server/routes.go for route registration.
package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go-paperstamp/internal/fetch"
	"go-paperstamp/internal/raster"
	"go-paperstamp/internal/stamp"
	"go-paperstamp/internal/store"

	_ "github.com/joho/godotenv/autoload"
)

type Server struct {
	port         int
	Stamper      *stamp.Stamper
	Store        *store.Store
	Fetcher      *fetch.Client
	AllowedHosts []string
	BaseURL      string
	OutputDir    string
}

func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}
	outputDir := os.Getenv("OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "output"
	}

	// Devanagari stamps degrade to skipped overlays without a font; the
	// service still runs.
	var face *raster.Face
	if fontPath := os.Getenv("STAMP_FONT_PATH"); fontPath != "" {
		var err error
		face, err = raster.LoadFace(fontPath)
		if err != nil {
			log.Printf("Could not load stamp font %s: %v", fontPath, err)
		}
	} else {
		log.Println("STAMP_FONT_PATH not set, Devanagari stamps will be skipped")
	}

	artifacts, err := store.New(outputDir, 5*time.Minute)
	if err != nil {
		log.Fatalf("Could not create artifact store: %v", err)
	}

	var allowedHosts []string
	for _, h := range strings.Split(os.Getenv("ALLOWED_FILE_HOSTS"), ",") {
		if h = strings.TrimSpace(h); h != "" {
			allowedHosts = append(allowedHosts, h)
		}
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", port)
	}

	srv := &Server{
		port:         port,
		Stamper:      stamp.New(face),
		Store:        artifacts,
		Fetcher:      fetch.New(30 * time.Second),
		AllowedHosts: allowedHosts,
		BaseURL:      baseURL,
		OutputDir:    outputDir,
	}

	// Sweep goroutine for expired artifacts
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n := srv.Store.Sweep(); n > 0 {
				log.Printf("Swept %d expired artifacts", n)
			}
		}
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", srv.port),
		Handler:      srv.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return server
}
