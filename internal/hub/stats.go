package hub

import (
	"sync"
	"time"
)

// latencyEMAWeight is the weight of the newest sample in the average ping
// latency. The average is an exponential moving average so a single outlier
// cannot dominate process-lifetime history.
const latencyEMAWeight = 0.2

// serviceStats holds the process-lifetime counters. Updated only at the
// send/receive choke points, never recomputed from logs.
type serviceStats struct {
	mu                    sync.Mutex
	totalConnections      uint64
	totalMessagesSent     uint64
	totalMessagesReceived uint64
	totalBytesSent        uint64
	totalBytesReceived    uint64
	peakConnections       int
	errorsCount           uint64
	avgPingLatencyMs      float64
	latencySampled        bool
	startedAt             time.Time
}

func newServiceStats(startedAt time.Time) *serviceStats {
	return &serviceStats{startedAt: startedAt}
}

func (s *serviceStats) recordConnection(live int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalConnections++
	if live > s.peakConnections {
		s.peakConnections = live
	}
}

func (s *serviceStats) recordSent(bytes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalMessagesSent++
	s.totalBytesSent += uint64(bytes)
}

func (s *serviceStats) recordReceived(bytes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalMessagesReceived++
	s.totalBytesReceived += uint64(bytes)
}

func (s *serviceStats) recordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorsCount++
}

func (s *serviceStats) recordPingLatency(latency time.Duration) {
	ms := float64(latency.Microseconds()) / 1000.0

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.latencySampled {
		s.avgPingLatencyMs = ms
		s.latencySampled = true
		return
	}
	s.avgPingLatencyMs = (1-latencyEMAWeight)*s.avgPingLatencyMs + latencyEMAWeight*ms
}

// StatsSnapshot is the JSON view of the cumulative counters.
type StatsSnapshot struct {
	TotalConnections      uint64    `json:"total_connections"`
	TotalMessagesSent     uint64    `json:"total_messages_sent"`
	TotalMessagesReceived uint64    `json:"total_messages_received"`
	TotalBytesSent        uint64    `json:"total_bytes_sent"`
	TotalBytesReceived    uint64    `json:"total_bytes_received"`
	AvgPingLatencyMs      float64   `json:"avg_ping_latency_ms"`
	PeakConnections       int       `json:"peak_connections"`
	ErrorsCount           uint64    `json:"errors_count"`
	StartedAt             time.Time `json:"started_at"`
}

func (s *serviceStats) snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		TotalConnections:      s.totalConnections,
		TotalMessagesSent:     s.totalMessagesSent,
		TotalMessagesReceived: s.totalMessagesReceived,
		TotalBytesSent:        s.totalBytesSent,
		TotalBytesReceived:    s.totalBytesReceived,
		AvgPingLatencyMs:      s.avgPingLatencyMs,
		PeakConnections:       s.peakConnections,
		ErrorsCount:           s.errorsCount,
		StartedAt:             s.startedAt,
	}
}

// Status is the introspection snapshot served by the administrative API.
type Status struct {
	ServiceMetrics    StatsSnapshot `json:"service_metrics"`
	ActiveConnections int           `json:"active_connections"`
	DebugEnabled      bool          `json:"debug_enabled"`
	DebugLogCount     int           `json:"debug_log_count"`
}

// Status composes the live registry size with the cumulative counters.
func (h *Hub) Status() Status {
	return Status{
		ServiceMetrics:    h.stats.snapshot(),
		ActiveConnections: h.ActiveCount(),
		DebugEnabled:      h.debugEnabled.Load(),
		DebugLogCount:     h.debugLog.size(),
	}
}
