package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/adapter"
	"github.com/pricepilot/dynamic-pricing/internal/api/middleware"
	"github.com/pricepilot/dynamic-pricing/internal/api/rest"
	"github.com/pricepilot/dynamic-pricing/internal/api/shared/executor"
	"github.com/pricepilot/dynamic-pricing/internal/auth"
	"github.com/pricepilot/dynamic-pricing/internal/billing"
	"github.com/pricepilot/dynamic-pricing/internal/email"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/notification"
	"github.com/pricepilot/dynamic-pricing/internal/pricing"
	"github.com/pricepilot/dynamic-pricing/internal/providers/competitor"
	"github.com/pricepilot/dynamic-pricing/internal/store"
)

// Config holds the server configuration
type Config struct {
	Debug          bool
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	Cookies        rest.CookieConfig
	Executor       executor.Config
}

// Dependencies are the services the API delegates to
type Dependencies struct {
	Store         store.Store
	Tokens        *auth.TokenManager
	Mailer        email.Mailer
	Competitors   competitor.Client
	Billing       billing.Service
	Engine        *pricing.Engine
	Notifications *notification.Service
	Clock         adapter.Clock
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
}

// New creates a new API server
func New(cfg Config, deps Dependencies) *Server {
	return &Server{
		config: cfg,
		deps:   deps,
	}
}

// Router builds the gin engine with middleware and routes
func (s *Server) Router() *gin.Engine {
	router := gin.New()

	// Setup middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS(s.config.AllowedOrigins))

	exec := executor.NewExecutor(
		s.deps.Store,
		s.deps.Tokens,
		s.deps.Mailer,
		s.deps.Competitors,
		s.deps.Billing,
		s.deps.Engine,
		s.deps.Notifications,
		s.deps.Clock,
		s.config.Executor,
	)

	restHandler := rest.NewHandler(s.config.Debug, exec, s.config.Cookies)
	rest.SetupRoutes(router, restHandler, s.deps.Tokens, s.config.Cookies.CSRFName)

	return router
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
