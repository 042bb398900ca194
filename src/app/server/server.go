// Package server provides HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gussgame/src/app/http/handler"
	"gussgame/src/app/http/response"
	"gussgame/src/app/middleware"
	"gussgame/src/core/ports"
	"gussgame/src/core/usecase"
	"gussgame/src/infra/auth"
	"gussgame/src/infra/config"
	"gussgame/src/infra/logger"
	"gussgame/src/infra/metrics"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	router *gin.Engine
	http   *http.Server

	// bound is closed once the listener is open; addr is valid after that.
	bound chan struct{}
	addr  string

	metrics    *metrics.Prometheus
	auth       *usecase.AuthService
	tapLimiter *middleware.KeyedRateLimiter

	// Handlers
	healthHandler *handler.HealthHandler
	authHandler   *handler.AuthHandler
	roundHandler  *handler.RoundHandler
}

// New creates a new Server with all dependencies wired up.
func New(cfg *config.Config, log *slog.Logger, repo ports.GameRepository, m *metrics.Prometheus) *Server {
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	router := gin.New()

	timing := usecase.RoundTiming{
		Cooldown: cfg.Game.CooldownDuration(),
		Duration: cfg.Game.RoundDuration(),
	}

	var gameMetrics ports.GameMetrics = ports.NoopMetrics{}
	if m != nil {
		gameMetrics = m
	}

	// Create services
	healthService := usecase.NewHealthService(logger.WithComponent(log, "health"), repo)
	authService := usecase.NewAuthService(
		repo,
		auth.NewBcryptHasher(),
		auth.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		logger.WithComponent(log, "auth"),
	)
	roundService := usecase.NewRoundService(repo, timing, logger.WithComponent(log, "rounds"), gameMetrics, time.Now)
	tapService := usecase.NewTapService(repo, logger.WithComponent(log, "taps"), gameMetrics, time.Now)

	s := &Server{
		bound:         make(chan struct{}),
		cfg:           cfg,
		log:           log,
		router:        router,
		metrics:       m,
		auth:          authService,
		tapLimiter:    middleware.NewKeyedRateLimiter(cfg.Limits.TapsPerSecond, cfg.Limits.TapBurst),
		healthHandler: handler.NewHealthHandler(healthService),
		authHandler:   handler.NewAuthHandler(authService, cfg.Auth.TokenTTL, cfg.Auth.CookieSecure),
		roundHandler:  handler.NewRoundHandler(roundService, tapService),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupHTTPServer()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// Recovery first so it sees panics from every other middleware
	s.router.Use(middleware.Recovery(s.log))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.CORS(s.cfg.Server.CORSOrigins))
	s.router.Use(middleware.Logging(s.log))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check endpoints (no auth required)
	s.router.GET("/health", s.healthHandler.Health)
	s.router.GET("/health/detailed", s.healthHandler.DetailedHealth)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthHandler.Health)

		api.POST("/auth/login", s.authHandler.Login)
		api.POST("/auth/logout", s.authHandler.Logout)

		authed := api.Group("", middleware.Auth(s.auth))
		authed.GET("/auth/me", s.authHandler.Me)

		authed.GET("/rounds", s.roundHandler.List)
		authed.POST("/rounds", middleware.RequireAdmin(), s.roundHandler.Create)
		authed.GET("/rounds/:id", s.roundHandler.Details)
		authed.POST("/rounds/:id/tap", middleware.RateLimitPerUser(s.tapLimiter), s.roundHandler.Tap)
	}

	s.router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "The requested resource was not found", middleware.GetRequestID(c))
	})
}

// setupHTTPServer configures the underlying HTTP server.
func (s *Server) setupHTTPServer() {
	s.http = &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.router,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
	}
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.addr = ln.Addr().String()
	close(s.bound)

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("starting HTTP server",
			"addr", s.addr,
			"round_duration", s.cfg.Game.RoundDuration(),
			"cooldown_duration", s.cfg.Game.CooldownDuration(),
		)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutdown requested", "cause", context.Cause(ctx))
	case err := <-errCh:
		return err
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.log.Info("shutting down server", "timeout", s.cfg.Server.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// Router returns the Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// WaitForReady blocks until Run has bound its listener and /health answers 200.
func (s *Server) WaitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	select {
	case <-s.bound:
	case <-time.After(timeout):
		return fmt.Errorf("server not listening after %v", timeout)
	}

	client := &http.Client{Timeout: time.Second}
	for time.Now().Before(deadline) {
		resp, err := client.Get("http://" + s.addr + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}
