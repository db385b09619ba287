package server

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/PrideVRInc/VRCAuthProxy/internal/config"
	"github.com/PrideVRInc/VRCAuthProxy/internal/platform/correlation"
	"github.com/PrideVRInc/VRCAuthProxy/internal/pool"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	sessions  *pool.Pool
	startTime time.Time
}

func NewServer(cfg *config.Config, sessions *pool.Pool) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(correlationMiddleware)

	srv := &Server{
		echo:      e,
		config:    cfg,
		sessions:  sessions,
		startTime: time.Now(),
	}

	// WebSocket upgrades are intercepted before routing so the relay works
	// on any path, matching the upstream's realtime endpoint behavior.
	e.Use(srv.websocketRelayMiddleware)

	srv.registerRoutes()

	return srv
}

// correlationMiddleware tags every request context with a fresh correlation
// ID so relay log lines can be tied together.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
