package hub

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ngeran/xaos/internal/errors"
	"github.com/ngeran/xaos/internal/metrics"
	"github.com/ngeran/xaos/internal/protocol"
)

// HandleInbound processes one raw frame from a client. Decode failures keep
// the connection alive and echo an Error envelope back to the sender; only
// an oversized frame surfaces an error to the transport, which may close the
// connection.
func (h *Hub) HandleInbound(id uuid.UUID, data []byte) error {
	c, ok := h.lookup(id)
	if !ok {
		slog.Warn("Inbound message for unknown connection", "connection_id", id)
		return errors.NotFoundError("connection not found").WithContext("connection_id", id.String())
	}

	if h.cfg.MaxMessageSize > 0 && len(data) > h.cfg.MaxMessageSize {
		h.stats.recordError()
		metrics.HubErrorsTotal.WithLabelValues(string(errors.TypeMessageTooLarge)).Inc()
		return errors.MessageTooLargeError(
			fmt.Sprintf("message of %d bytes exceeds limit of %d", len(data), h.cfg.MaxMessageSize))
	}

	c.touch()
	c.messagesReceived.Add(1)
	c.bytesReceived.Add(uint64(len(data)))
	h.stats.recordReceived(len(data))
	metrics.HubMessagesReceivedTotal.Inc()
	metrics.HubBytesReceivedTotal.Add(float64(len(data)))

	env, err := protocol.Decode(data)
	if err != nil {
		h.stats.recordError()
		metrics.HubErrorsTotal.WithLabelValues(string(errors.TypeDeserialization)).Inc()
		slog.Warn("Failed to decode inbound message", "connection_id", id, "error", err)
		h.LogDebug("warn", "Message",
			fmt.Sprintf("failed to decode message from %s: %v", id, err), nil)
		h.replyError(id, "invalid message: "+err.Error(), http.StatusBadRequest)
		return nil
	}

	switch m := env.(type) {
	case protocol.Ping:
		// Answered immediately, independent of the supervisor cycle.
		if err := h.SendTo(id, protocol.Pong{}); err != nil {
			slog.Debug("Failed to send pong", "connection_id", id, "error", err)
		}
	case protocol.Pong:
		h.recordPong(c)
	case protocol.Subscribe:
		h.UpdateSubscriptions(id, m.Topics, nil)
		slog.Info("Subscriptions added", "connection_id", id, "topics", m.Topics)
		h.LogDebug("info", "Subscribe", fmt.Sprintf("%s subscribed to %v", id, m.Topics), nil)
	case protocol.Unsubscribe:
		h.UpdateSubscriptions(id, nil, m.Topics)
		slog.Info("Subscriptions removed", "connection_id", id, "topics", m.Topics)
		h.LogDebug("info", "Unsubscribe", fmt.Sprintf("%s unsubscribed from %v", id, m.Topics), nil)
	case protocol.RequestConnectionInfo:
		if err := h.SendTo(id, c.details()); err != nil {
			slog.Debug("Failed to send connection info", "connection_id", id, "error", err)
		}
	case protocol.RequestActiveConnections:
		snap := h.Snapshot()
		stats := protocol.ActiveConnections{Count: len(snap), Connections: snap}
		if err := h.SendTo(id, stats); err != nil {
			slog.Debug("Failed to send active connections", "connection_id", id, "error", err)
		}
	case protocol.Custom:
		h.LogDebug("info", "Custom",
			fmt.Sprintf("custom event %q from %s", m.Event, id), m.Payload)
		h.Broadcast(protocol.TopicAll, m)
	default:
		// Server-to-client kinds echoed back by a confused client.
		h.LogDebug("debug", "Message",
			fmt.Sprintf("unhandled %s envelope from %s", env.EnvelopeType(), id), nil)
	}

	return nil
}

func (h *Hub) recordPong(c *Conn) {
	sentAt := c.lastPingSentAt.Swap(0)
	if sentAt == 0 {
		return
	}
	latency := h.clock.Now().Sub(time.Unix(0, sentAt))
	if latency < 0 {
		return
	}
	c.pingLatency.Store(int64(latency))
	h.stats.recordPingLatency(latency)
	metrics.HubPingLatencySeconds.Observe(latency.Seconds())
	h.LogDebug("debug", "Ping", fmt.Sprintf("pong from %s after %s", c.id, latency), nil)
}

func (h *Hub) replyError(id uuid.UUID, message string, code int) {
	env := protocol.Error{Message: message, Code: &code}
	if err := h.SendTo(id, env); err != nil {
		slog.Debug("Failed to send error envelope", "connection_id", id, "error", err)
	}
}
