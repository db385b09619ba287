package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/PrideVRInc/VRCAuthProxy/internal/metrics"
	"github.com/PrideVRInc/VRCAuthProxy/internal/platform/version"
)

// poolEmptyBody is the exact body clients receive when no account logged in.
const poolEmptyBody = "No accounts available"

func (s *Server) handleStatus(c echo.Context) error {
	return c.String(200, fmt.Sprintf("Logged in with %d accounts", s.sessions.Len()))
}

func (s *Server) handleRotate(c echo.Context) error {
	s.sessions.Rotate()
	metrics.PoolRotationsTotal.Inc()

	active := "none"
	if session := s.sessions.Active(); session != nil {
		active = session.Username
	}
	slog.InfoContext(c.Request().Context(), "Rotated session pool", "active_account", active)

	return c.String(200, "Rotated account")
}

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status":  "ok",
		"uptime":  uptime,
		"version": version.Get(),
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	count := s.sessions.Len()
	if count == 0 {
		return c.JSON(503, map[string]any{
			"status":       "unhealthy",
			"failed_check": "session_pool",
			"error":        "no authenticated sessions",
		})
	}
	return c.JSON(200, map[string]any{
		"status":   "ready",
		"sessions": count,
	})
}
