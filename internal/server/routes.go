package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Pool status and rotation
	s.echo.GET("/", s.handleStatus)
	s.echo.GET("/rotate", s.handleRotate)

	// Everything under the upstream API prefix is relayed
	s.echo.Any("/api/1", s.handleAPIRelay)
	s.echo.Any("/api/1/*", s.handleAPIRelay)
}
