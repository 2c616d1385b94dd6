package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"quadralivre/internal/config"
	"quadralivre/internal/db"
	"quadralivre/internal/db/migrations"
	"quadralivre/internal/routes"
	"quadralivre/internal/services"
)

// @title Quadra Livre API
// @version 1.0
// @description Reservation and approval engine for sports venues.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	if err := db.CreateDatabaseIfNotExists(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to ensure database exists: %v", err)
	}

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := migrations.RunMigrations(database.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := db.SeedAdmin(context.Background(), database.DB, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	s3cfg, err := config.NewS3Config()
	if err != nil {
		log.Fatalf("Failed to configure photo storage: %v", err)
	}
	uploader := services.NewS3PhotoUploader(s3cfg)

	router := routes.SetupRoutes(database.DB, cfg, uploader)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
