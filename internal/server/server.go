// Package server is the HTTP transport: routing, identity extraction, and
// translation between domain errors and status codes.
package server

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"updoot/internal/config"
	"updoot/internal/domain"
	"updoot/internal/metrics"
)

type Server struct {
	echo     *echo.Echo
	config   *config.Config
	app      domain.AppService
	pool     *pgxpool.Pool
	rdb      *goredis.Client // nil when rate limiting is not configured
	registry *prometheus.Registry
}

// NewServer creates the HTTP server. rdb may be nil.
func NewServer(cfg *config.Config, app domain.AppService, pool *pgxpool.Pool, rdb *goredis.Client, registry *prometheus.Registry, httpMetrics *metrics.HTTPMetrics) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(correlationMiddleware)
	e.Use(middleware.Recover())
	e.Use(httpMetrics.Middleware("/metrics", "/health/live", "/health/ready"))
	e.Use(ErrorHandlingMiddleware())

	srv := &Server{
		echo:     e,
		config:   cfg,
		app:      app,
		pool:     pool,
		rdb:      rdb,
		registry: registry,
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
