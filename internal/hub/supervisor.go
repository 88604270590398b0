package hub

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ngeran/xaos/internal/metrics"
	"github.com/ngeran/xaos/internal/protocol"
)

// Start launches the liveness supervisor: a periodic sweep that pings every
// responsive connection and evicts the stale ones.
func (h *Hub) Start() {
	if !h.started.CompareAndSwap(false, true) {
		return
	}
	go h.supervise()
}

func (h *Hub) supervise() {
	ticker := h.clock.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	defer close(h.supervisorDone)

	for {
		select {
		case <-ticker.Chan():
			h.sweep()
		case <-h.shutdown:
			return
		}
	}
}

// sweep runs one supervisor pass. Connections silent beyond the timeout are
// marked first, then pings go out to the rest, then the marked ones are
// evicted through the normal removal path.
func (h *Hub) sweep() {
	now := h.clock.Now()

	var stale []uuid.UUID
	var healthy []*Conn
	h.mu.RLock()
	for id, c := range h.conns {
		if c.stale(now, h.cfg.ConnectionTimeout) {
			stale = append(stale, id)
		} else {
			healthy = append(healthy, c)
		}
	}
	h.mu.RUnlock()

	if len(healthy) > 0 {
		data, err := protocol.Encode(protocol.Ping{})
		if err != nil {
			slog.Error("Failed to encode ping", "error", err)
		} else {
			for _, c := range healthy {
				c.lastPingSentAt.Store(now.UnixNano())
				if err := c.trySend(data); err != nil {
					slog.Debug("Failed to queue ping", "connection_id", c.id, "error", err)
					continue
				}
				h.stats.recordSent(len(data))
				metrics.HubMessagesSentTotal.Inc()
				metrics.HubBytesSentTotal.Add(float64(len(data)))
			}
		}
	}

	for _, id := range stale {
		slog.Warn("Evicting stale connection",
			"connection_id", id,
			"timeout", h.cfg.ConnectionTimeout,
		)
		metrics.HubStaleEvictionsTotal.Inc()
		h.LogDebug("warn", "HealthCheck", fmt.Sprintf("connection %s evicted as stale", id), nil)
		h.Remove(id)
	}
}

// Stop shuts the supervisor down and closes every remaining connection.
func (h *Hub) Stop() {
	h.shutdownOnce.Do(func() { close(h.shutdown) })
	if h.started.Load() {
		<-h.supervisorDone
	}

	h.mu.Lock()
	closing := make([]*Conn, 0, len(h.conns))
	for id, c := range h.conns {
		closing = append(closing, c)
		delete(h.conns, id)
	}
	h.mu.Unlock()

	for _, c := range closing {
		c.close()
	}
	metrics.HubActiveConnections.Set(0)
	slog.Info("Hub stopped", "closed_connections", len(closing))
}
