package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kongle-express/internal/config"
	"kongle-express/internal/database"
	"kongle-express/internal/handler"
	"kongle-express/internal/middleware"
	"kongle-express/internal/payment"
	"kongle-express/internal/repository"
	"kongle-express/internal/router"
	"kongle-express/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Local development convenience; a missing .env file is fine
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting kongle-express API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Apply pending schema migrations
	if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize repositories
	kongleRepo := repository.NewKongleRepository(pool, logger)
	subscriptionRepo := repository.NewSubscriptionRepository(pool, logger)
	eventRepo := repository.NewWebhookEventRepository(pool, logger)

	// Initialize payment gateway
	gateway := payment.NewStripeGateway(cfg.Stripe, logger)

	// Initialize services
	kongleService := service.NewKongleService(kongleRepo, logger)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, logger)
	checkoutService := service.NewCheckoutService(kongleRepo, subscriptionRepo, gateway, logger)
	webhookService := service.NewWebhookService(kongleRepo, subscriptionRepo, eventRepo, gateway, logger)

	// Initialize HTTP handlers
	kongleHandler := handler.NewKongleHandler(kongleService, logger)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)
	webhookHandler := handler.NewWebhookHandler(webhookService, logger)

	// Initialize rate limiter; its eviction loop stops with the app context
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, logger, ctx.Done())

	// Initialize router
	mux := router.New(kongleHandler, subscriptionHandler, checkoutHandler, webhookHandler, rateLimiter, cfg.Static, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
