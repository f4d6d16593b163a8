// Package main runs the headshot HTTP gateway.
//
// Configuration is via environment variables (a .env file is loaded if
// present):
//
//	HEADSHOT_PORT        - Server port (default: 8000)
//	HEADSHOT_LOG_LEVEL   - debug, info, warn or error (default: info)
//	HEADSHOT_CORS_ORIGIN - Allowed CORS origin (default: *)
//	HEADSHOT_TIMEOUT     - Per-request generation timeout (default: 2m)
//	IMAGE_PROVIDER       - Default provider: openai or gemini (default: openai)
//	OPENAI_API_KEY       - OpenAI API key
//	GEMINI_API_KEY       - Gemini API key
//	GOOGLE_CLOUD_PROJECT - Route Gemini through Vertex AI in this project
//	RUNWARE_API_KEY      - Runware API key for PhotoMaker
//	AUTH_JWT_SECRET      - HS256 secret; unset disables authentication
//	REDIS_URL            - Credit ledger; unset disables credit checks
//	STORAGE_BUCKET       - Cloud Storage bucket; unset stores under STORAGE_DIR
//
// Usage:
//
//	OPENAI_API_KEY=... go run ./cmd/serve
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spetersoncode/headshot/client"
	"github.com/spetersoncode/headshot/internal/auth"
	"github.com/spetersoncode/headshot/internal/credits"
	"github.com/spetersoncode/headshot/internal/metrics"
	"github.com/spetersoncode/headshot/internal/provider/runware"
	"github.com/spetersoncode/headshot/internal/storage"
)

const (
	routeGenerate   = "/api/generate-image"
	routePhotoMaker = "/api/generate-image/photomaker"
	imagesPath      = "/images/"
)

func main() {
	// Load configuration
	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector("headshot", reg)

	events := make(chan client.Event, 64)
	go collector.Consume(events, logger)

	gen := createClient(cfg, events)

	mux := http.NewServeMux()

	store, closeStore, err := createStore(ctx, cfg, mux)
	if err != nil {
		return err
	}
	defer closeStore()

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	if !verifier.Enabled() {
		logger.Warn("AUTH_JWT_SECRET not set, requests are anonymous")
	}

	deps := Deps{
		Auth:    verifier,
		Store:   store,
		Metrics: collector,
		Timeout: cfg.Timeout,
	}

	if cfg.RedisURL != "" {
		ledger, err := credits.NewFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer ledger.Close()
		deps.Credits = ledger
	} else {
		logger.Warn("REDIS_URL not set, credit checks disabled")
	}

	// Setup routes
	mux.Handle(routeGenerate, corsMiddleware(cfg.CORSOrigin, NewImageHandler(routeGenerate, gen.GenerateImage, deps)))
	mux.Handle(routePhotoMaker, corsMiddleware(cfg.CORSOrigin, NewImageHandler(routePhotoMaker, gen.GeneratePhotoMaker, deps)))
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("server starting",
		"port", cfg.Port,
		"default_provider", gen.DefaultProvider(),
		"photomaker", cfg.RunwareKey != "",
	)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func createClient(cfg *Config, events chan<- client.Event) *client.Client {
	return client.New(client.Config{
		APIKeys: client.APIKeys{
			OpenAI:  cfg.OpenAIKey,
			Gemini:  cfg.GeminiKey,
			Runware: cfg.RunwareKey,
		},
		DefaultProvider: cfg.Provider,
		Endpoints: client.Endpoints{
			OpenAI:  cfg.OpenAIBaseURL,
			Gemini:  cfg.GeminiBaseURL,
			Runware: cfg.RunwareURL,
		},
		Models: client.Models{
			OpenAI: cfg.OpenAIModel,
			Gemini: cfg.GeminiModel,
		},
		Vertex: client.Vertex{
			Project:  cfg.VertexProject,
			Location: cfg.VertexLocation,
		},
		Runware: runware.Config{
			Model:    cfg.RunwareModel,
			Style:    cfg.RunwareStyle,
			Strength: cfg.RunwareStrength,
			Steps:    cfg.RunwareSteps,
		},
		Events: events,
	})
}

// createStore picks Cloud Storage when a bucket is configured. Local files
// are served from imagesPath on mux.
func createStore(ctx context.Context, cfg *Config, mux *http.ServeMux) (storage.Store, func(), error) {
	if cfg.StorageBucket != "" {
		gcs, err := storage.NewGCSStore(ctx, cfg.StorageBucket)
		if err != nil {
			return nil, nil, err
		}
		return gcs, func() { gcs.Close() }, nil
	}

	local, err := storage.NewLocalStore(cfg.StorageDir, imagesPath)
	if err != nil {
		return nil, nil, err
	}
	mux.Handle(imagesPath, http.StripPrefix(imagesPath, http.FileServer(http.Dir(local.Dir()))))
	return local, func() {}, nil
}
