package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ngeran/xaos/internal/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"uptime":  uptime,
		"version": version.Get(),
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	// The hub is in-process; ready means it still accepts registrations.
	if s.hub.ActiveCount() >= s.config.MaxConnections {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status": "at_capacity",
			"active": s.hub.ActiveCount(),
			"max":    s.config.MaxConnections,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ready",
		"active": s.hub.ActiveCount(),
	})
}
