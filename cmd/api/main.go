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

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	if cfg.Catalog.SeedEnabled {
		if err := seedCatalog(ctx, cfg.Catalog, productRepo, logger); err != nil {
			return err
		}
	}

	orderCache, closeCache := newOrderCache(ctx, cfg.Redis, logger)
	defer closeCache()

	publisher := newPublisher(cfg.Kafka, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	m := metrics.New()

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, orderCache, publisher, m, logger)
	paymentService := service.NewPaymentService(newPaymentGateway(cfg.Payment, logger), cfg.Payment.RazorpayKeyID, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	paymentHandler := handler.NewPaymentHandler(paymentService, logger)

	// Initialize router
	authenticate := middleware.Authenticate(tokens, userRepo, cfg.Auth.CookieName, logger)
	mux := router.New(productHandler, orderHandler, paymentHandler, authenticate, cfg.Server.CORSOrigins, m, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
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
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
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

// seedCatalog imports the configured seed files, reading from S3 first when
// enabled and falling back to the local file system.
func seedCatalog(ctx context.Context, cfg config.CatalogConfig, store catalog.Store, logger zerolog.Logger) error {
	fileLoader := catalog.NewFileLoader(logger)
	loader := fileLoader

	if cfg.S3Enabled {
		s3Loader, err := catalog.NewS3Loader(ctx, cfg.S3Bucket, cfg.S3Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = catalog.NewFallbackLoader(s3Loader, fileLoader, logger)
		}
	} else {
		logger.Info().Msg("using local file system for catalog files (S3 disabled)")
	}

	count, err := catalog.NewSeeder(loader, store, logger).Seed(ctx, cfg.SeedFiles)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	logger.Info().Int("products", count).Msg("catalog seeded")
	return nil
}

// newOrderCache connects to Redis when enabled. An unreachable Redis
// degrades to no caching rather than failing startup.
func newOrderCache(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (cache.OrderCache, func()) {
	if !cfg.Enabled {
		return cache.NopCache{}, func() {}
	}

	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Str("address", cfg.Address()).Msg("redis unavailable, order cache disabled")
		return cache.NopCache{}, func() {}
	}

	logger.Info().Str("address", cfg.Address()).Dur("ttl", cfg.TTL).Msg("order cache enabled")
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
	return cache.NewRedisOrderCache(client, cfg.TTL), closeFn
}

func newPublisher(cfg config.KafkaConfig, logger zerolog.Logger) events.Publisher {
	if !cfg.Enabled {
		return events.NopPublisher{}
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.OrdersTopic).
		Msg("order events enabled")
	return events.NewKafkaPublisher(cfg, logger)
}

// newPaymentGateway returns the Razorpay client behind a circuit breaker, or
// nil when no credentials are configured.
func newPaymentGateway(cfg config.PaymentConfig, logger zerolog.Logger) payment.Gateway {
	if !cfg.Enabled() {
		logger.Info().Msg("payment gateway disabled (no razorpay credentials)")
		return nil
	}

	logger.Info().
		Str("base_url", cfg.RazorpayBaseURL).
		Int("breaker_failures", cfg.BreakerFailures).
		Dur("breaker_cooldown", cfg.BreakerCooldown).
		Msg("payment gateway enabled")
	client := payment.NewRazorpayClient(cfg, logger)
	return payment.NewBreaker(client, cfg.BreakerFailures, cfg.BreakerCooldown, logger)
}
