package hub

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/ngeran/xaos/internal/errors"
	"github.com/ngeran/xaos/internal/metrics"
	"github.com/ngeran/xaos/internal/protocol"
)

// SendTo serializes the envelope once and attempts delivery through the
// target's bounded queue. Returns a not-found error for stale ids and a
// queue-full error when the client has stalled; neither aborts the caller.
func (h *Hub) SendTo(id uuid.UUID, env protocol.Envelope) error {
	data, err := protocol.Encode(env)
	if err != nil {
		h.stats.recordError()
		metrics.HubErrorsTotal.WithLabelValues(string(errors.TypeSerialization)).Inc()
		return errors.SerializationError("failed to encode envelope", err)
	}
	return h.deliver(id, data)
}

func (h *Hub) deliver(id uuid.UUID, data []byte) error {
	c, ok := h.lookup(id)
	if !ok {
		return errors.NotFoundError("connection not found").WithContext("connection_id", id.String())
	}

	if err := c.trySend(data); err != nil {
		h.stats.recordError()
		if errors.IsType(err, errors.TypeQueueFull) {
			metrics.HubQueueFullDropsTotal.Inc()
		}
		metrics.HubErrorsTotal.WithLabelValues(string(errors.AsStructuredError(err).Type)).Inc()
		return err
	}

	h.stats.recordSent(len(data))
	metrics.HubMessagesSentTotal.Inc()
	metrics.HubBytesSentTotal.Add(float64(len(data)))
	return nil
}

// Broadcast fans the envelope out to every connection eligible for the
// topic: all of them for TopicAll, the single target for a direct topic,
// otherwise exact subscription matches. Delivery is attempted once per
// target; individual failures are collected for logging and never stop the
// loop. Returns the number of successful enqueues.
func (h *Hub) Broadcast(topic protocol.Topic, env protocol.Envelope) (int, error) {
	data, err := protocol.Encode(env)
	if err != nil {
		h.stats.recordError()
		metrics.HubErrorsTotal.WithLabelValues(string(errors.TypeSerialization)).Inc()
		return 0, errors.SerializationError("failed to encode envelope", err)
	}

	start := h.clock.Now()

	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		if eligible(c, topic) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	var failures []error
	for _, c := range targets {
		if err := c.trySend(data); err != nil {
			h.stats.recordError()
			if errors.IsType(err, errors.TypeQueueFull) {
				metrics.HubQueueFullDropsTotal.Inc()
			}
			failures = append(failures, errors.AsStructuredError(err).WithContext("connection_id", c.id.String()))
			continue
		}
		delivered++
		h.stats.recordSent(len(data))
		metrics.HubMessagesSentTotal.Inc()
		metrics.HubBytesSentTotal.Add(float64(len(data)))
	}

	metrics.HubBroadcastDuration.Observe(h.clock.Since(start).Seconds())

	if len(failures) > 0 {
		slog.Warn("Broadcast completed with failures",
			"topic", topic.String(),
			"delivered", delivered,
			"failed", len(failures),
			"first_error", failures[0],
		)
	}
	return delivered, nil
}

// eligible must be called with the registry lock held (read or write): it
// touches the subscription set.
func eligible(c *Conn, topic protocol.Topic) bool {
	if topic == protocol.TopicAll {
		return true
	}
	if id, ok := topic.IsDirect(); ok && id == c.id {
		return true
	}
	_, ok := c.subscriptions[topic.String()]
	return ok
}
