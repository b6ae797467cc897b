// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Marga-Ghale/ora-project-tracker/internal/api"
	"github.com/Marga-Ghale/ora-project-tracker/internal/api/handlers"
	"github.com/Marga-Ghale/ora-project-tracker/internal/cache"
	"github.com/Marga-Ghale/ora-project-tracker/internal/config"
	"github.com/Marga-Ghale/ora-project-tracker/internal/cron"
	"github.com/Marga-Ghale/ora-project-tracker/internal/db"
	"github.com/Marga-Ghale/ora-project-tracker/internal/seed"
	"github.com/Marga-Ghale/ora-project-tracker/internal/service"
	"github.com/Marga-Ghale/ora-project-tracker/internal/socket"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	log.Printf("🔄 Running %s migrations...", cfg.DatabaseDriver)
	if err := db.Migrate(cfg); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// ============================================
	// Open the project store
	// ============================================
	store, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to open %s database: %v", cfg.DatabaseDriver, err)
	}
	defer store.Close()
	log.Printf("📦 Repositories initialized (%s)", store.Driver)

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var projectCache service.ProjectCache
	var cachePinger handlers.Pinger
	if cfg.RedisURL != "" {
		redisDB, err := db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (continuing without cache)", err)
		} else {
			defer redisDB.Close()
			projectCache = cache.NewProjectCache(redisDB, cfg.CacheTTL)
			cachePinger = redisDB
			log.Println("⚡ Redis cache enabled")
		}
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := socket.NewHub()
	go hub.Run(ctx)
	broadcaster := socket.NewBroadcaster(hub)
	wsHandler := socket.NewHandler(hub, cfg.CORSOrigins)
	log.Println("🔌 WebSocket hub initialized")

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Repos:  store.Repos,
		Cache:  projectCache,
		Events: broadcaster,
	})
	log.Println("✨ All services initialized")

	// ============================================
	// Seed Data (for development)
	// ============================================
	if cfg.SeedOnStart {
		seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if _, err := seed.SeedIfEmpty(seedCtx, store.Repos.ProjectRepo); err != nil {
			log.Printf("⚠️ Seeding failed: %v", err)
		}
		cancel()
	}

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	if cfg.CronEnabled {
		scheduler := cron.NewScheduler(services.Project, broadcaster)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("❌ Failed to start scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	// ============================================
	// Create Gin Router
	// ============================================
	h := handlers.NewHandlers(services, handlers.NewHealthHandler(store, cachePinger, hub))
	r := api.NewRouter(h, wsHandler, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Project Tracking API running on port %s", cfg.Port)
		log.Printf("📋 API Base: http://localhost:%s/api/projects", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	stop()

	log.Println("Server exited")
}
