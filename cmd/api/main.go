package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cargochainlabs/cargochain-backend/api/controllers"
	"github.com/cargochainlabs/cargochain-backend/api/routes"
	"github.com/cargochainlabs/cargochain-backend/internal/auth"
	"github.com/cargochainlabs/cargochain-backend/internal/booking"
	"github.com/cargochainlabs/cargochain-backend/internal/seed"
	"github.com/cargochainlabs/cargochain-backend/internal/spaces"
	"github.com/cargochainlabs/cargochain-backend/internal/stats"
	"github.com/cargochainlabs/cargochain-backend/internal/tracking"
	"github.com/cargochainlabs/cargochain-backend/internal/users"
	"github.com/cargochainlabs/cargochain-backend/pkg/chain"
	"github.com/cargochainlabs/cargochain-backend/pkg/config"
	"github.com/cargochainlabs/cargochain-backend/pkg/db"
	"github.com/cargochainlabs/cargochain-backend/pkg/logger"
	"github.com/cargochainlabs/cargochain-backend/pkg/metrics"
	"github.com/cargochainlabs/cargochain-backend/pkg/migrate"
	"github.com/cargochainlabs/cargochain-backend/pkg/outbox"
	"github.com/cargochainlabs/cargochain-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	chainClient := chain.NewMockClient()
	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	spaceRepo := spaces.NewRepository(dbClient.DB())
	spacesService, err := spaces.NewService(spaces.ServiceParams{
		DB:      dbClient,
		Repo:    spaceRepo,
		Chain:   chainClient,
		Outbox:  outboxService,
		Metrics: bookingMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create spaces service", err)
		os.Exit(1)
	}

	trackingRepo := tracking.NewRepository(dbClient.DB())
	bookingService, err := booking.NewService(booking.ServiceParams{
		DB:           dbClient,
		Shipments:    booking.NewShipmentRepository(dbClient.DB()),
		Transactions: booking.NewTransactionRepository(dbClient.DB()),
		Spaces:       spaceRepo,
		Tracking:     trackingRepo,
		Outbox:       outboxService,
		Metrics:      bookingMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	trackingService, err := tracking.NewService(tracking.ServiceParams{
		DB:      dbClient,
		Repo:    trackingRepo,
		Outbox:  outboxService,
		Metrics: bookingMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create tracking service", err)
		os.Exit(1)
	}

	statsService, err := stats.NewService(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.SeedDemoData {
		if err := seed.Run(context.Background(), dbClient, cfg.Password, logg); err != nil {
			logg.Error(context.Background(), "failed to seed demo data", err)
			os.Exit(1)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config: cfg,
			Logger: logg,
			Redis:  redisClient,
			Pingers: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			Auth:     authService,
			Spaces:   spacesService,
			Booking:  bookingService,
			Tracking: trackingService,
			Stats:    statsService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
