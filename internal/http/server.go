package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/sessions/internal/auth/http"
	authService "github.com/allisson/sessions/internal/auth/service"
	"github.com/allisson/sessions/internal/config"
	"github.com/allisson/sessions/internal/metrics"
)

// adminUsersWriteClaim gates the role-change and account-delete endpoints.
const adminUsersWriteClaim = "admin:users:write"

// Server represents the main HTTP server.
type Server struct {
	db     *sql.DB
	router *gin.Engine
	server *http.Server
	addr   string
	logger *slog.Logger
}

// NewServer creates a new HTTP server. The router is configured separately
// via SetupRouter before Start is called.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		addr:   fmt.Sprintf("%s:%d", host, port),
		logger: logger,
	}
}

// RouterDeps bundles everything route registration needs.
type RouterDeps struct {
	Config            *config.Config
	TokenHandler      *authHTTP.TokenHandler
	AccountHandler    *authHTTP.AccountHandler
	JWTService        authService.JWTService
	RevocationService authService.RevocationService
	RoleClaimsService authService.RoleClaimsService
	MetricsProvider   *metrics.Provider
}

// SetupRouter configures the Gin router with middleware and all routes.
//
// Route layout:
//   - GET  /health, /ready              - liveness and readiness probes
//   - POST /v1/auth/login               - public, rate limited
//   - POST /v1/auth/refresh             - public, rate limited
//   - POST /v1/auth/logout              - authenticated
//   - POST /v1/users                    - public registration
//   - PUT  /v1/users/:id/role           - authenticated admin
//   - DELETE /v1/users/:id              - authenticated admin
//
// The /metrics endpoint is deliberately NOT registered here: it lives on the
// separate MetricsServer so operational traffic never shares a port with the
// API surface.
func (s *Server) SetupRouter(deps RouterDeps) {
	gin.SetMode(deps.Config.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(
		deps.Config.CORSEnabled,
		deps.Config.CORSAllowOrigins,
		s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if deps.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(
			deps.MetricsProvider.MeterProvider(),
			deps.Config.MetricsNamespace,
		))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	authenticate := authHTTP.AuthenticationMiddleware(deps.JWTService, s.logger)
	revocationGate := authHTTP.RevocationMiddleware(deps.RevocationService, s.logger)
	requireAdmin := authHTTP.AuthorizationMiddleware(
		adminUsersWriteClaim,
		deps.RoleClaimsService,
		s.logger,
	)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			// Login and refresh mint tokens, so they stay outside the
			// authentication middleware. Both are rate limited per IP when
			// enabled; refresh included, since a stolen refresh token is
			// guessable material just like a password.
			public := auth.Group("")
			if deps.Config.RateLimitLoginEnabled {
				public.Use(authHTTP.LoginRateLimitMiddleware(
					deps.Config.RateLimitLoginRequestsPerSec,
					deps.Config.RateLimitLoginBurst,
					s.logger,
				))
			}
			public.POST("/login", deps.TokenHandler.LoginHandler)
			public.POST("/refresh", deps.TokenHandler.RefreshHandler)

			auth.POST("/logout", authenticate, revocationGate, deps.TokenHandler.LogoutHandler)
		}

		users := v1.Group("/users")
		{
			users.POST("", deps.AccountHandler.RegisterHandler)
			users.PUT("/:id/role", authenticate, revocationGate, requireAdmin,
				deps.AccountHandler.UpdateRoleHandler)
			users.DELETE("/:id", authenticate, revocationGate, requireAdmin,
				deps.AccountHandler.DeleteHandler)
		}
	}

	s.router = router
}

// healthHandler reports liveness. It never touches dependencies: a live
// process with a broken database is still live.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness by pinging the database.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Error("readiness check failed",
				slog.String("component", "database"),
				slog.String("error", err.Error()))
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the HTTP server. SetupRouter must have been called first.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting http server", slog.String("addr", s.addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
