package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/config"
	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/handler"
	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/middleware"
	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/pkg/logger"
	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/service"
	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/vocab"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully", "office", cfg.Office.Name)

	// Output directories must exist before the first publish.
	for _, dir := range []string{cfg.LedgerDir(), cfg.MetadataDir(), cfg.QRDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("failed to create output directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	// Controlled vocabulary, loaded once and never mutated.
	dictionary := vocab.Default()

	// Initialize services
	ledger := service.NewLedger(cfg.LedgerDir())
	artifacts := service.NewArtifacts(cfg.MetadataDir(), cfg.QRDir(), cfg.Public.ViewerBaseURL)

	var mirror *service.ArtifactMirror
	if cfg.Mirror.Enabled {
		mirror, err = service.NewArtifactMirror(&cfg.Mirror)
		if err != nil {
			slog.Error("failed to initialize artifact mirror", "error", err)
			os.Exit(1)
		}
		if err := mirror.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure mirror bucket", "error", err)
			os.Exit(1)
		}
		slog.Info("artifact mirror enabled", "endpoint", cfg.Mirror.Endpoint, "bucket", cfg.Mirror.Bucket)
	}

	publisher := service.NewPublisher(cfg, ledger, artifacts, mirror)

	// Initialize handlers
	publishHandler := handler.NewPublishHandler(publisher, dictionary)
	importHandler := handler.NewImportXMLHandler(artifacts, func(file string) string {
		return cfg.Public.BaseURL + "/public/qr_images/" + file
	})

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware
	handler.RegisterValidators()

	// Add custom middleware
	router.Use(middleware.RequestID())                // Request ID for tracing
	router.Use(middleware.Recovery())                 // Panic recovery
	router.Use(middleware.RequestLogger())            // Access logging
	router.Use(corsMiddleware())                      // CORS
	router.Use(middleware.RateLimit(60, time.Minute)) // Rate limiting: 60 requests per minute

	// Published artifacts are exposed read-only under /public,
	// mirroring the on-disk layout of the output directory.
	router.Static("/public", cfg.Public.OutputDir)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		rows, _ := ledger.RowCount(cfg.Office.Name)
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"office":    cfg.Office.Name,
			"published": rows,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/publish-data", publishHandler.PublishData)
		api.POST("/import-xml", importHandler.Import)
	}

	// Image analysis only runs with a configured model key.
	if cfg.Vision.APIKey != "" {
		vision := service.NewVision(&cfg.Vision, dictionary)
		analyzeHandler := handler.NewAnalyzeHandler(vision, dictionary)
		api.POST("/analyze-image", analyzeHandler.AnalyzeImage)
		slog.Info("image analysis enabled", "model", cfg.Vision.Model)
	} else {
		slog.Info("image analysis disabled: no API key configured")
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers for the browser form
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		// Published artifacts never change once written; anything under
		// /api must not be cached.
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		} else if strings.HasPrefix(c.Request.URL.Path, "/public/") {
			c.Header("Cache-Control", "public, max-age=3600")
		}

		c.Next()
	}
}
