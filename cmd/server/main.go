package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/siteforge/content-pipeline/internal/api"
	"github.com/siteforge/content-pipeline/internal/clients"
	"github.com/siteforge/content-pipeline/internal/config"
	"github.com/siteforge/content-pipeline/internal/database"
	"github.com/siteforge/content-pipeline/internal/repository"
	"github.com/siteforge/content-pipeline/internal/service"
	"github.com/siteforge/content-pipeline/internal/store"
	"github.com/siteforge/content-pipeline/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting content pipeline server...")

	// Load .env if present, real env wins
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := db.RunMigrations(migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize record store and repositories
	recordStore := store.NewPostgresStore(db, log)
	repos := repository.New(recordStore)

	// Initialize external collaborators
	collab := service.Collaborators{
		Generator: clients.NewHTTPGenerator(&cfg.Generation, log),
		Billing:   clients.NewHTTPBilling(&cfg.Billing, log),
		Resolver:  clients.NewDoHResolver(&cfg.DNS, log),
		Certs:     clients.NewHTTPCertProvisioner(&cfg.DNS, log),
	}

	// Initialize services
	services := service.NewServices(repos, collab, cfg, log)

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
