package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/ender-admin-auth/internal/api"
	"github.com/isdelr/ender-admin-auth/internal/auth"
	"github.com/isdelr/ender-admin-auth/internal/config"
	"github.com/isdelr/ender-admin-auth/internal/database"
	"github.com/isdelr/ender-admin-auth/internal/logger"
	"github.com/isdelr/ender-admin-auth/internal/monitoring"
	"github.com/isdelr/ender-admin-auth/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	adminService := services.NewAdminService(db)
	signer := auth.NewSigner(cfg.JWTSecret)
	authService := services.NewAuthService(adminService, signer, services.WithBcryptCost(cfg.BcryptCost))

	// Optional background sweeper for expired sessions
	var sweeper *monitoring.SessionSweeper
	if cfg.SessionSweepSchedule != "" {
		sweeper, err = monitoring.NewSessionSweeper(adminService, cfg.SessionSweepSchedule)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to set up session sweeper")
		}
		sweeper.Run()
	}

	// Set up router
	router := api.NewRouter(authService, cfg.CORSAllowedOrigins)

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if sweeper != nil {
		sweeper.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
