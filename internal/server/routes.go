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

	// Realtime connection endpoint
	s.echo.GET("/ws", s.handleWebSocket)

	// Administrative API
	api := s.echo.Group("/api/realtime")
	api.GET("/status", s.handleStatus)
	api.GET("/connections", s.handleConnections)
	api.POST("/broadcast", s.handleBroadcast)
	api.POST("/jobs/broadcast", s.handleJobBroadcast)
	api.POST("/debug/toggle", s.handleDebugToggle)
	api.GET("/debug/logs", s.handleDebugLogs)
	api.DELETE("/debug/logs", s.handleClearDebugLogs)
}
