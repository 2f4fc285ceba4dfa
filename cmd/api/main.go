// Package main is the entry point for the viewer API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/copafer/chat-viewer/internal/config"
	"github.com/copafer/chat-viewer/internal/feedback"
	"github.com/copafer/chat-viewer/internal/handler"
	"github.com/copafer/chat-viewer/internal/middleware"
	natsclient "github.com/copafer/chat-viewer/internal/nats"
	"github.com/copafer/chat-viewer/internal/service"
	"github.com/copafer/chat-viewer/internal/source"
	"github.com/copafer/chat-viewer/pkg/logger"
	"github.com/copafer/chat-viewer/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting viewer API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "chat-viewer", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Initialize services
	sourceClient := source.New(cfg.SourceURL, cfg.SourceTimeout, log)
	datasetSvc := service.NewDatasetService(sourceClient, cfg.UseSampleOnError, log)

	var feedbackSvc *service.FeedbackService
	if cfg.FeedbackURL != "" {
		cache, err := feedback.NewCache(cfg.FeedbackCachePath)
		if err != nil {
			log.Error("failed to open feedback cache", zap.Error(err))
			os.Exit(1)
		}
		remote := feedback.NewClient(cfg.FeedbackURL, cfg.FeedbackTimeout, log)
		feedbackSvc = service.NewFeedbackService(remote, cache, log)
	}

	// Connect to NATS when the live channel is configured
	var nc *natsclient.Client
	if cfg.NATSURL != "" {
		nc, err = natsclient.Connect(natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer nc.Close()

		ingester := natsclient.NewIngester(nc, cfg.NATSSubject, datasetSvc)
		if err := ingester.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure stream", zap.Error(err))
			os.Exit(1)
		}
		if err := ingester.Start(ctx); err != nil {
			log.Error("failed to start live ingest", zap.Error(err))
			os.Exit(1)
		}
		log.Info("live ingest enabled", zap.String("subject", cfg.NATSSubject))
	}

	// Initial dataset load; the server still starts on failure and serves
	// whatever /refresh later brings in.
	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.SourceTimeout)
	if err := datasetSvc.Load(loadCtx); err != nil {
		log.Warn("initial dataset load failed", zap.Error(err))
	}
	cancelLoad()

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(datasetSvc, nc)
	conversationHandler := handler.NewConversationHandler(datasetSvc, log)
	exportHandler := handler.NewExportHandler(datasetSvc, log)
	var feedbackStore handler.FeedbackStore
	if feedbackSvc != nil {
		feedbackStore = feedbackSvc
	}
	statsHandler := handler.NewStatsHandler(datasetSvc, feedbackStore, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Correlation-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/conversations", conversationHandler.List)
		r.Get("/conversations/{sessionID}", conversationHandler.Get)
		r.Post("/refresh", conversationHandler.Refresh)

		r.Get("/stats", statsHandler.Stats)
		r.Get("/export", exportHandler.Export)

		if feedbackSvc != nil {
			feedbackHandler := handler.NewFeedbackHandler(feedbackSvc, log)
			r.Get("/feedback/{sessionID}", feedbackHandler.Get)
			r.Post("/feedback", feedbackHandler.Save)
		}
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
