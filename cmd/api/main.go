package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pricepilot/dynamic-pricing/internal/adapter"
	"github.com/pricepilot/dynamic-pricing/internal/api/rest"
	"github.com/pricepilot/dynamic-pricing/internal/api/server"
	"github.com/pricepilot/dynamic-pricing/internal/api/shared/executor"
	"github.com/pricepilot/dynamic-pricing/internal/auth"
	"github.com/pricepilot/dynamic-pricing/internal/billing"
	"github.com/pricepilot/dynamic-pricing/internal/config"
	"github.com/pricepilot/dynamic-pricing/internal/email"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/notification"
	"github.com/pricepilot/dynamic-pricing/internal/pricing"
	"github.com/pricepilot/dynamic-pricing/internal/providers/competitor"
	"github.com/pricepilot/dynamic-pricing/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		Environment:     cfg.Environment,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Dynamic Pricing API")

	// Connect to database, routing reads to the replica when one is configured
	var readDSN string
	if cfg.Database.ReadHost != "" {
		readDSN = cfg.Database.ReadDSN()
	}
	db, err := store.Open(cfg.Database.DSN(), readDSN, cfg.Debug)
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
		zap.Bool("read_replica", readDSN != ""),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clock := adapter.NewClock()
	httpClient := adapter.NewHTTPClient(cfg.CompetitorService.Timeout)

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTPrivateKey, cfg.Auth.JWTPublicKey, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to initialize token manager", zap.Error(err))
	}

	mailer, err := email.New(cfg.Email)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to initialize mailer", zap.Error(err), zap.String("provider", cfg.Email.Provider))
	}

	if cfg.CompetitorService.URL == "" {
		logger.WarnCtx(ctx, "Competitor service URL not configured, hotel search is disabled")
	}
	competitors := competitor.NewClient(httpClient, cfg.CompetitorService.URL, cfg.CompetitorService.Token)

	if cfg.Stripe.SecretKey == "" {
		logger.WarnCtx(ctx, "Stripe secret key not configured, checkout is disabled")
	}
	billingService := billing.NewService(cfg.Stripe)

	engine := pricing.NewEngine(dataStore, clock, pricing.NewHolidayCalendar())
	notifications := notification.NewService(dataStore, mailer, clock, cfg.Notifications, cfg.Email.Templates.CoverageAlert)

	// Create server config
	serverConfig := server.Config{
		Debug:          cfg.Debug,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Cookies: rest.CookieConfig{
			RefreshName: cfg.Auth.RefreshCookieName,
			CSRFName:    cfg.Auth.CSRFCookieName,
			Domain:      cfg.Auth.CookieDomain,
			Secure:      cfg.Auth.CookieSecure,
			RefreshTTL:  cfg.Auth.RefreshTokenTTL,
		},
		Executor: executor.Config{
			RefreshTokenTTL:    cfg.Auth.RefreshTokenTTL,
			Templates:          cfg.Email.Templates,
			PricingHorizonDays: cfg.Pricing.HorizonDays,
		},
	}

	srv := server.New(serverConfig, server.Dependencies{
		Store:         dataStore,
		Tokens:        tokens,
		Mailer:        mailer,
		Competitors:   competitors,
		Billing:       billingService,
		Engine:        engine,
		Notifications: notifications,
		Clock:         clock,
	})

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	logger.InfoCtx(shutdownCtx, "Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("API server stopped")
}
