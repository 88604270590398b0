package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/ngeran/xaos/internal/errors"
	"github.com/ngeran/xaos/internal/hub"
	"github.com/ngeran/xaos/internal/protocol"
)

const maxBroadcastMessageLength = 1024

// broadcastEventName is the Custom envelope event name for ad-hoc broadcasts.
const broadcastEventName = "broadcast_event"

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.hub.Status())
}

func (s *Server) handleConnections(c echo.Context) error {
	snapshot := s.hub.Snapshot()
	return c.JSON(http.StatusOK, map[string]any{
		"count":       len(snapshot),
		"connections": snapshot,
	})
}

type broadcastRequest struct {
	Topic   string `json:"topic"`
	Message string `json:"message"`
}

func (s *Server) handleBroadcast(c echo.Context) error {
	var req broadcastRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Message == "" {
		return apperrors.ValidationError("message cannot be empty")
	}
	if len(req.Message) > maxBroadcastMessageLength {
		return apperrors.ValidationError(
			fmt.Sprintf("message too long (max %d characters)", maxBroadcastMessageLength))
	}

	payload, err := json.Marshal(map[string]string{"message": req.Message})
	if err != nil {
		return apperrors.InternalError("failed to encode broadcast payload", err)
	}

	topic := protocol.ParseTopic(req.Topic)
	delivered, err := s.hub.Broadcast(topic, protocol.Custom{
		Event:   broadcastEventName,
		Payload: payload,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    "success",
		"topic":     topic.String(),
		"delivered": delivered,
	})
}

type jobEventRequest struct {
	JobID     string          `json:"job_id"`
	Device    string          `json:"device"`
	JobType   string          `json:"job_type"`
	EventType string          `json:"event_type"`
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data"`
	Error     *string         `json:"error,omitempty"`
}

func (s *Server) handleJobBroadcast(c echo.Context) error {
	var req jobEventRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.JobID == "" {
		return apperrors.ValidationError("job_id cannot be empty")
	}
	if req.Device == "" {
		return apperrors.ValidationError("device cannot be empty")
	}

	event := hub.JobEvent{
		JobID:     req.JobID,
		Device:    req.Device,
		JobType:   req.JobType,
		EventType: req.EventType,
		Status:    req.Status,
		Data:      req.Data,
		Error:     req.Error,
	}
	if err := s.hub.PublishJobEvent(event); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "success",
		"job_id": req.JobID,
		"device": req.Device,
	})
}

func (s *Server) handleDebugToggle(c echo.Context) error {
	enabled := s.hub.ToggleDebug()
	return c.JSON(http.StatusOK, map[string]any{"debug_enabled": enabled})
}

func (s *Server) handleDebugLogs(c echo.Context) error {
	logs := s.hub.DebugLogs()
	return c.JSON(http.StatusOK, map[string]any{
		"count":   len(logs),
		"entries": logs,
	})
}

func (s *Server) handleClearDebugLogs(c echo.Context) error {
	s.hub.ClearDebugLogs()
	return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}
