package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"letterhead/config"
	"letterhead/db"
	"letterhead/handlers"
	"letterhead/middleware"
	"letterhead/models"
	"letterhead/services"
	"letterhead/services/jobs"
	"letterhead/services/measure"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: cfg.Environment,
	}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.PasswordResetToken{},
		&models.BrandProfile{},
		&models.Letter{},
		&models.GeneratedDocument{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	services.InitializeStorage(cfg)
	middleware.InitAssetVersions("static")

	geometry, err := measure.GeometryFromConfig(cfg)
	if err != nil {
		log.Fatalf("Invalid page geometry: %v", err)
	}
	renderer := services.NewLetterRenderer(measure.FromConfig(cfg), geometry)
	exporter := services.NewLetterExporter(db.DB, renderer, cfg.ChromePath)

	scheduler, err := jobs.StartScheduler(db.DB, cfg)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	e := newServer(cfg, handlers.NewComposer(renderer, exporter))

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("[INFO] Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	<-scheduler.Stop().Done()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("[WARNING] Server shutdown: %v", err)
	}
	services.WaitForAuditWrites()
}
