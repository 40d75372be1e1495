package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mnogodumalon/schichtplan/internal/api"
	"github.com/mnogodumalon/schichtplan/internal/config"
	"github.com/mnogodumalon/schichtplan/internal/export"
	"github.com/mnogodumalon/schichtplan/internal/livingapps"
	"github.com/mnogodumalon/schichtplan/internal/middleware"
	"github.com/mnogodumalon/schichtplan/internal/platform/metrics"
	"github.com/mnogodumalon/schichtplan/internal/platform/vision"
	"github.com/mnogodumalon/schichtplan/internal/schedule"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	client := livingapps.NewClient(cfg.BaseURL, cfg.Token, &http.Client{Timeout: cfg.RequestTimeout})
	cols := cfg.Collections()
	loader := schedule.NewLoader(client, cols)

	var extractor schedule.Extractor
	if cfg.GeminiAPIKey != "" {
		gemini, err := vision.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("photo scan setup failed: %v", err)
		}
		extractor = gemini
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx); err != nil {
			http.Error(w, "record store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.Get("/metricsz", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		scheduleHandler := schedule.NewHandler(client, loader, cols, extractor)
		scheduleHandler.RegisterRoutes(r)

		exportHandler := export.NewHandler(loader)
		exportHandler.RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	// Warm the plan snapshot; a failure here is retried on first use.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		if _, err := loader.Refresh(ctx); err != nil {
			log.Printf("initial load failed: %v", err)
		}
	}()

	log.Printf("schichtplan server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
