package server

import (
	"github.com/labstack/echo/v4"

	"updoot/internal/metrics"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler(s.registry)))

	// Read side (no auth required)
	s.echo.GET("/api/feed", s.handleFeed)
	s.echo.GET("/api/posts/:id", s.handleGetPost)

	// Write side (authenticated)
	s.echo.POST("/api/posts/:id/vote", s.handleCastVote, s.requireAuth)
	s.echo.POST("/api/posts", s.handleCreatePost, s.requireAuth)
	s.echo.PATCH("/api/posts/:id", s.handleUpdatePost, s.requireAuth)
	s.echo.DELETE("/api/posts/:id", s.handleDeletePost, s.requireAuth)
}
