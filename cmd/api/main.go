package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/symmetrixs/edaago/internal/ai"
	"github.com/symmetrixs/edaago/internal/config"
	"github.com/symmetrixs/edaago/internal/convert"
	"github.com/symmetrixs/edaago/internal/database"
	"github.com/symmetrixs/edaago/internal/detection"
	"github.com/symmetrixs/edaago/internal/handlers"
	"github.com/symmetrixs/edaago/internal/services/inspection"
	"github.com/symmetrixs/edaago/internal/services/notify"
	"github.com/symmetrixs/edaago/internal/services/photo"
	"github.com/symmetrixs/edaago/internal/services/report"
	"github.com/symmetrixs/edaago/internal/services/stats"
	"github.com/symmetrixs/edaago/internal/services/team"
	"github.com/symmetrixs/edaago/internal/services/users"
	"github.com/symmetrixs/edaago/internal/storage"
	"github.com/symmetrixs/edaago/internal/store"
	"github.com/symmetrixs/edaago/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 2. Initialize database (embedded PostgreSQL when no password is configured)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// 3. Auto-Migrate Schema
	log.Println("🚀 Synchronizing database schema...")
	if err := db.Migrate(); err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}
	st := store.NewGormStore(db.DB)

	// 4. Blob storage: S3 when a bucket is configured, local files otherwise
	var (
		blobs storage.Blob
		files http.Handler
	)
	if cfg.Storage.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.Storage.S3Bucket,
			Region:    cfg.Storage.S3Region,
			Endpoint:  cfg.Storage.S3Endpoint,
			Prefix:    cfg.Storage.S3Prefix,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			log.Fatalf("Failed to init S3 storage: %v", err)
		}
		blobs = s3Store
		log.Printf("☁️ Storage: S3 bucket %s", cfg.Storage.S3Bucket)
	} else {
		local, err := storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.LocalBaseURL)
		if err != nil {
			log.Fatalf("Failed to init local storage: %v", err)
		}
		blobs = local
		files = local.Handler()
		log.Printf("📁 Storage: local directory %s", cfg.Storage.LocalDir)
	}

	// 5. External collaborators
	detector := detection.NewClient(detection.Config{
		BaseURL:             cfg.Detector.URL,
		SingleTimeout:       cfg.Detector.SingleTimeout,
		BatchTimeout:        cfg.Detector.BatchTimeout,
		MaxAttempts:         cfg.Detector.MaxAttempts,
		FallbackMaxAttempts: cfg.Detector.FallbackMaxAttempts,
		BaseBackoff:         cfg.Detector.BaseBackoff,
		ItemDelay:           cfg.Detector.ItemDelay,
	})
	log.Printf("🔍 Detector: %s", detector.BaseURL())

	converter := convert.New(convert.Config{
		SofficePath:     cfg.Converter.SofficePath,
		Timeout:         cfg.Converter.Timeout,
		DisableFallback: cfg.Converter.DisableFallback,
	})

	var generator ai.Generator
	if cfg.AI.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiClient(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
		if err != nil {
			log.Printf("⚠️ AI summary disabled: %v", err)
		} else {
			defer gemini.Close()
			generator = gemini
			log.Println("🤖 AI summary enabled")
		}
	}

	// 6. Notification hub and services
	hub := websocket.NewHub()
	go hub.Run(ctx)

	notifications := notify.New(st, hub)
	router := handlers.NewRouter(handlers.Deps{
		Store:          st,
		Users:          users.NewService(st, cfg.JWTSecret),
		Inspections:    inspection.NewService(st),
		Reports:        report.NewService(st, blobs, converter, notifications),
		Photos:         photo.NewService(st, detector, blobs),
		Teams:          team.NewService(st, notifications),
		Notifications:  notifications,
		Stats:          stats.NewService(st),
		Summarizer:     ai.NewSummarizer(generator),
		Detector:       detector,
		Hub:            hub,
		Files:          files,
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		PublicBaseURL:  cfg.Server.PublicBaseURL,
	})

	// 7. Start server with graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("🚀 Server (%s) starting on port %s\n", cfg.NodeEnv, cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	stop()

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
