package hub

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ngeran/xaos/internal/errors"
	"github.com/ngeran/xaos/internal/metrics"
	"github.com/ngeran/xaos/internal/protocol"
)

// Config holds the hub's construction-time settings. Only debug mode is
// mutable afterwards, via ToggleDebug.
type Config struct {
	PingInterval      time.Duration
	ConnectionTimeout time.Duration
	MaxConnections    int
	QueueCapacity     int
	MaxMessageSize    int
	DebugEnabled      bool
	DebugLogCapacity  int
}

// DefaultConfig mirrors the production defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval:      30 * time.Second,
		ConnectionTimeout: 300 * time.Second,
		MaxConnections:    1000,
		QueueCapacity:     100,
		MaxMessageSize:    1 << 20,
		DebugEnabled:      false,
		DebugLogCapacity:  10000,
	}
}

// Hub owns the connection registry and everything built on top of it. Hubs
// are independent instances; tests run several side by side.
type Hub struct {
	cfg   Config
	clock clockwork.Clock

	mu    sync.RWMutex
	conns map[uuid.UUID]*Conn

	stats        *serviceStats
	debugEnabled atomic.Bool
	debugLog     *debugRing

	started        atomic.Bool
	shutdown       chan struct{}
	shutdownOnce   sync.Once
	supervisorDone chan struct{}
}

// New creates a hub. Start must be called to run the liveness supervisor.
func New(cfg Config, clock clockwork.Clock) *Hub {
	h := &Hub{
		cfg:            cfg,
		clock:          clock,
		conns:          make(map[uuid.UUID]*Conn),
		stats:          newServiceStats(clock.Now()),
		debugLog:       newDebugRing(cfg.DebugLogCapacity),
		shutdown:       make(chan struct{}),
		supervisorDone: make(chan struct{}),
	}
	h.debugEnabled.Store(cfg.DebugEnabled)
	return h
}

// Register allocates a connection record and its outbound queue, sends the
// welcome envelope, and announces the new stats snapshot. The capacity gate
// runs under the write lock before any resources are allocated.
func (h *Hub) Register(remoteAddr, userAgent string) (*Conn, error) {
	h.mu.Lock()
	if len(h.conns) >= h.cfg.MaxConnections {
		h.mu.Unlock()
		h.stats.recordError()
		metrics.HubConnectionsRejectedTotal.Inc()
		metrics.HubErrorsTotal.WithLabelValues(string(errors.TypeCapacityExceeded)).Inc()
		slog.Warn("Connection rejected: limit reached",
			"remote_addr", remoteAddr,
			"max_connections", h.cfg.MaxConnections,
		)
		h.LogDebug("error", "Connection",
			fmt.Sprintf("connection rejected: limit %d reached", h.cfg.MaxConnections), nil)
		return nil, errors.CapacityExceededError(
			fmt.Sprintf("maximum connections (%d) reached", h.cfg.MaxConnections))
	}

	c := newConn(remoteAddr, userAgent, h.cfg.QueueCapacity, h.clock)
	h.conns[c.id] = c
	live := len(h.conns)
	h.mu.Unlock()

	h.stats.recordConnection(live)
	metrics.HubConnectionsTotal.Inc()
	metrics.HubActiveConnections.Set(float64(live))

	// The queue is fresh, so the welcome always fits.
	if err := h.SendTo(c.id, c.details()); err != nil {
		slog.Warn("Failed to enqueue welcome", "connection_id", c.id, "error", err)
	}

	slog.Info("Connection registered",
		"connection_id", c.id,
		"remote_addr", remoteAddr,
		"live_connections", live,
	)
	h.LogDebug("info", "Connection", fmt.Sprintf("connection %s registered", c.id), nil)
	h.broadcastStats()

	return c, nil
}

// Remove deletes a connection from the registry. Idempotent; a second call
// for the same id is a no-op. A real removal closes the connection's Done
// channel and rebroadcasts the stats snapshot.
func (h *Hub) Remove(id uuid.UUID) {
	h.mu.Lock()
	c, ok := h.conns[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, id)
	live := len(h.conns)
	h.mu.Unlock()

	c.close()
	metrics.HubActiveConnections.Set(float64(live))

	slog.Info("Connection removed", "connection_id", id, "live_connections", live)
	h.LogDebug("info", "Cleanup", fmt.Sprintf("connection %s removed", id), nil)
	h.broadcastStats()
}

// UpdateSubscriptions mutates a connection's subscription set. Unknown ids
// are ignored: a late update racing a removal is dropped silently.
func (h *Hub) UpdateSubscriptions(id uuid.UUID, added, removed []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[id]
	if !ok {
		return
	}
	for _, topic := range added {
		c.subscriptions[topic] = struct{}{}
	}
	for _, topic := range removed {
		delete(c.subscriptions, topic)
	}
}

// Snapshot returns a point-in-time view of every live connection.
func (h *Hub) Snapshot() []protocol.ConnectionSummary {
	now := h.clock.Now()
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]protocol.ConnectionSummary, 0, len(h.conns))
	for _, c := range h.conns {
		out = append(out, c.summary(now))
	}
	return out
}

// ActiveCount returns the current number of live connections.
func (h *Hub) ActiveCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) lookup(id uuid.UUID) (*Conn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.conns[id]
	return c, ok
}

func (h *Hub) broadcastStats() {
	snap := h.Snapshot()
	h.Broadcast(protocol.TopicAll, protocol.ActiveConnections{
		Count:       len(snap),
		Connections: snap,
	})
}
