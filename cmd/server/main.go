package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dukerupert/kiosk/internal"
	"github.com/dukerupert/kiosk/internal/domain"
	"github.com/dukerupert/kiosk/internal/handler"
	"github.com/dukerupert/kiosk/internal/middleware"
	"github.com/dukerupert/kiosk/internal/orderlog"
	"github.com/dukerupert/kiosk/internal/postgres"
	"github.com/dukerupert/kiosk/internal/router"
	"github.com/dukerupert/kiosk/internal/routes"
	"github.com/dukerupert/kiosk/internal/service"
	"github.com/dukerupert/kiosk/internal/store"
	"github.com/dukerupert/kiosk/internal/telemetry"
	"github.com/dukerupert/kiosk/internal/worker"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// ==========================================================================
	// Product store
	// ==========================================================================

	var productStore domain.Store

	switch cfg.StoreDriver {
	case internal.StoreDriverPostgres:
		logger.Info("Connecting to database...")
		sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer sqlDB.Close()

		if err := sqlDB.Ping(); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		logger.Info("Database connection established")

		logger.Info("Running database migrations...")
		if err := internal.RunMigrations(sqlDB); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		pgStore := postgres.NewStore(pool)

		// First boot on an empty database takes the catalog from the
		// seed file; after that the database is authoritative.
		seed, err := store.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to load seed file: %w", err)
		}
		if len(seed) > 0 {
			if err := pgStore.SeedIfEmpty(ctx, seed); err != nil {
				return fmt.Errorf("failed to seed catalog: %w", err)
			}
		}
		productStore = pgStore

	case internal.StoreDriverMemory:
		seed, err := store.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to load seed file: %w", err)
		}
		memStore, err := store.NewMemoryFrom(seed)
		if err != nil {
			return fmt.Errorf("failed to build catalog: %w", err)
		}
		persister := worker.NewPersister(memStore, worker.Config{
			Path:     cfg.SeedFile,
			Interval: cfg.PersistInterval,
		}, logger)
		go func() {
			if err := persister.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("catalog persister stopped", "error", err)
			}
		}()

		// Flush after every successful mutation, not only on the tick.
		productStore = store.NewNotifying(memStore, persister)
		logger.Info("Catalog loaded", "file", cfg.SeedFile, "products", len(seed))

	default:
		return fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}

	// ==========================================================================
	// Order log sinks
	// ==========================================================================

	var sinks []domain.OrderLog
	if cfg.OrderLog.Path != "" {
		csvLog, err := orderlog.NewCSVLog(cfg.OrderLog.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize order log: %w", err)
		}
		sinks = append(sinks, csvLog)
	}
	if cfg.OrderLog.NatsURL != "" {
		natsLog, err := orderlog.NewNATSLog(cfg.OrderLog.NatsURL, cfg.OrderLog.NatsSubject)
		if err != nil {
			return fmt.Errorf("failed to connect order log to NATS: %w", err)
		}
		defer natsLog.Close()
		sinks = append(sinks, natsLog)
		logger.Info("Publishing orders to NATS", "subject", cfg.OrderLog.NatsSubject)
	}
	var orderLog domain.OrderLog
	if len(sinks) > 0 {
		orderLog = orderlog.NewMulti(sinks...)
	}

	// ==========================================================================
	// Services
	// ==========================================================================

	businessMetrics := telemetry.NewBusinessMetrics("kiosk")

	catalogService := service.NewCatalogService(productStore, businessMetrics, logger)
	checkoutService := service.NewCheckoutService(productStore, orderLog, businessMetrics, logger)
	sessions := service.NewSessionManager(30*time.Minute, businessMetrics, logger)

	go sessions.Sweep(ctx, time.Minute)

	// ==========================================================================
	// Router
	// ==========================================================================

	metrics := middleware.NewMetrics("kiosk")

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		middleware.WithRequestLogger(logger),
		middleware.AccessLog,
	)

	// Metrics endpoint (protect via firewall in production)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.RegisterKioskRoutes(r, routes.KioskDeps{
		ProductHandler:  handler.NewProductHandler(catalogService),
		CartHandler:     handler.NewCartHandler(sessions, catalogService, businessMetrics),
		CheckoutHandler: handler.NewCheckoutHandler(sessions, checkoutService),
	})
	routes.RegisterAdminRoutes(r, routes.AdminDeps{
		AdminHandler: handler.NewAdminHandler(catalogService),
		AdminPIN:     cfg.AdminPIN,
	})

	// ==========================================================================
	// Serve
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting kiosk server", "address", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
