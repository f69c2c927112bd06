package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pricepilot/dynamic-pricing/internal/adapter"
	"github.com/pricepilot/dynamic-pricing/internal/config"
	"github.com/pricepilot/dynamic-pricing/internal/email"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/notification"
	"github.com/pricepilot/dynamic-pricing/internal/pricing"
	"github.com/pricepilot/dynamic-pricing/internal/store"
	"github.com/pricepilot/dynamic-pricing/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	runOnce    = flag.Bool("once", false, "Run every sweeper once and exit")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		Environment:     cfg.Environment,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "sweeper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Sweeper")

	// Connect to database
	db, err := store.Open(cfg.Database.DSN(), "", cfg.Debug)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize clock adapter
	clock := adapter.NewClock()

	mailer, err := email.New(cfg.Email)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to initialize mailer", zap.Error(err), zap.String("provider", cfg.Email.Provider))
	}

	engine := pricing.NewEngine(dataStore, clock, pricing.NewHolidayCalendar())
	notifications := notification.NewService(dataStore, mailer, clock, cfg.Notifications, cfg.Email.Templates.CoverageAlert)

	sweepers := []sweeper.Sweeper{
		sweeper.NewCoverageSweeper(sweeper.Config{
			Schedule:       cfg.Notifications.Schedule,
			HorizonDays:    cfg.Notifications.HorizonDays,
			WorkerPoolSize: cfg.Worker.WorkerPoolSize,
			QueueSize:      cfg.Worker.WorkerQueueSize,
		}, dataStore, notifications, clock),
		sweeper.NewPricingSweeper(sweeper.Config{
			Schedule:       cfg.Pricing.Schedule,
			HorizonDays:    cfg.Pricing.HorizonDays,
			WorkerPoolSize: cfg.Worker.WorkerPoolSize,
			QueueSize:      cfg.Worker.WorkerQueueSize,
		}, dataStore, engine, clock),
	}

	logger.InfoCtx(ctx, "Initialized sweepers",
		zap.String("coverage_schedule", cfg.Notifications.Schedule),
		zap.String("pricing_schedule", cfg.Pricing.Schedule),
		zap.Int("worker_pool_size", cfg.Worker.WorkerPoolSize),
	)

	if *runOnce {
		for _, s := range sweepers {
			summary, err := s.RunOnce(ctx)
			if err != nil {
				logger.FatalCtx(ctx, "Sweeper run failed", zap.String("sweeper", s.Name()), zap.Error(err))
			}
			logger.InfoCtx(ctx, "Sweeper run finished",
				zap.String("sweeper", s.Name()),
				zap.Int("properties", summary.Properties),
				zap.Int("failed", summary.Failed),
			)
		}
		return
	}

	// Start the sweepers in goroutines
	errChan := make(chan error, len(sweepers))
	var wg sync.WaitGroup
	for _, s := range sweepers {
		wg.Add(1)
		go func(s sweeper.Sweeper) {
			defer wg.Done()
			if err := s.Start(ctx); err != nil {
				errChan <- fmt.Errorf("sweeper %s: %w", s.Name(), err)
			}
		}(s)
	}

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweepers
	cancel()

	// Give the sweepers time to finish the running cycle
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	for _, s := range sweepers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.ErrorCtx(shutdownCtx, err, zap.String("sweeper", s.Name()))
		}
	}
	wg.Wait()

	logger.InfoCtx(shutdownCtx, "Sweeper stopped")
}
