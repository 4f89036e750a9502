// Package http assembles the gin engine and owns the HTTP server lifecycle.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/tokengate/tokengate/internal/config"
	"github.com/tokengate/tokengate/internal/infrastructure/monitoring"
	"github.com/tokengate/tokengate/internal/interfaces/http/handlers"
	"github.com/tokengate/tokengate/internal/interfaces/http/middleware"
	"github.com/tokengate/tokengate/pkg/constants"
	"github.com/tokengate/tokengate/pkg/logger"
)

// RouterDependencies carries everything the router wires together.
type RouterDependencies struct {
	Config  *config.Config
	Logger  logger.Logger
	Metrics *monitoring.Metrics
	Tracing *monitoring.TracingManager

	AuthHandler   *handlers.AuthHandler
	AdminHandler  *handlers.AdminHandler
	HealthHandler *handlers.HealthHandler
	Gate          gin.HandlerFunc
}

// Server wraps the gin engine and its http.Server.
type Server struct {
	engine *gin.Engine
	server *http.Server
	cfg    *config.ServerConfig
	log    logger.Logger
}

// NewServer builds the route table.
func NewServer(deps RouterDependencies) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestContext())
	engine.Use(middleware.Observability(deps.Tracing, deps.Metrics, deps.Logger))

	corsOrigins := deps.Config.Server.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", constants.RequestIDHeader},
		ExposeHeaders:    []string{constants.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/health", deps.HealthHandler.Health)
	engine.GET("/ready", deps.HealthHandler.Ready)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics.Registry(), promhttp.HandlerOpts{})))

	if deps.Config.Server.EnablePprof {
		pprof.Register(engine)
	}

	alwaysSuccess := deps.Config.Auth.AlwaysSuccessStatus
	v1 := engine.Group("/api/v1")
	{
		v1.POST("/auth/login", deps.AuthHandler.Login)
		v1.POST("/auth/refresh", deps.AuthHandler.Refresh)

		protected := v1.Group("", deps.Gate)
		{
			protected.POST("/auth/logout", deps.AuthHandler.Logout)
			protected.GET("/auth/me", deps.AuthHandler.Me)
		}

		admin := v1.Group("/admin", deps.Gate, middleware.RequireRole(constants.RoleAdmin, alwaysSuccess))
		{
			admin.GET("/tenants/:tenant/sessions/access", deps.AdminHandler.ListAccessSessions)
			admin.GET("/tenants/:tenant/sessions/refresh", deps.AdminHandler.ListRefreshSessions)
			admin.GET("/tenants/:tenant/sessions/oauth", deps.AdminHandler.ListOAuthSessions)
			admin.POST("/sessions/access/revoke", deps.AdminHandler.RevokeAccessSession)
			admin.POST("/sessions/refresh/revoke", deps.AdminHandler.RevokeRefreshSession)
		}
	}

	return &Server{
		engine: engine,
		cfg:    &deps.Config.Server,
		log:    deps.Logger.WithComponent("http_server"),
	}
}

// Engine exposes the gin engine for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until ctx is canceled, then drains connections within the
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.log.Info(ctx, "http server listening", logger.String("addr", s.cfg.Addr()))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.log.Info(shutdownCtx, "http server draining")
		return s.server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
