package hub

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ngeran/xaos/internal/metrics"
	"github.com/ngeran/xaos/internal/protocol"
)

// debugRing is a bounded buffer of trace entries; once full, the oldest
// entry is overwritten.
type debugRing struct {
	mu      sync.Mutex
	entries []protocol.Debug
	next    int
}

func newDebugRing(capacity int) *debugRing {
	if capacity <= 0 {
		capacity = 1
	}
	return &debugRing{entries: make([]protocol.Debug, 0, capacity)}
}

func (r *debugRing) add(entry protocol.Debug) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) < cap(r.entries) {
		r.entries = append(r.entries, entry)
		return
	}
	r.entries[r.next] = entry
	r.next = (r.next + 1) % len(r.entries)
}

// snapshot returns entries oldest first.
func (r *debugRing) snapshot() []protocol.Debug {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]protocol.Debug, 0, len(r.entries))
	if len(r.entries) == cap(r.entries) {
		out = append(out, r.entries[r.next:]...)
		out = append(out, r.entries[:r.next]...)
	} else {
		out = append(out, r.entries...)
	}
	return out
}

func (r *debugRing) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = r.entries[:0]
	r.next = 0
}

func (r *debugRing) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// LogDebug records a trace entry and relays it on the debug topic. With
// debug mode off this is a no-op: nothing is recorded, not merely filtered
// at read time.
func (h *Hub) LogDebug(level, component, message string, data any) {
	if !h.debugEnabled.Load() {
		return
	}

	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			slog.Warn("Failed to encode debug data", "component", component, "error", err)
		} else {
			raw = encoded
		}
	}

	entry := protocol.Debug{
		Level:     level,
		Component: component,
		Message:   message,
		Data:      raw,
		Timestamp: h.clock.Now(),
	}
	h.debugLog.add(entry)
	metrics.HubDebugLogEntries.Set(float64(h.debugLog.size()))

	h.Broadcast(protocol.TopicDebug, entry)
}

// ToggleDebug flips debug mode at runtime and returns the new state. Only
// future entries are affected.
func (h *Hub) ToggleDebug() bool {
	enabled := !h.debugEnabled.Load()
	h.debugEnabled.Store(enabled)
	if enabled {
		h.LogDebug("info", "DebugToggle", "debug mode enabled", nil)
	}
	slog.Info("Debug mode toggled", "enabled", enabled)
	return enabled
}

// DebugEnabled reports whether debug tracing is currently on.
func (h *Hub) DebugEnabled() bool {
	return h.debugEnabled.Load()
}

// DebugLogs returns the recorded trace entries, oldest first.
func (h *Hub) DebugLogs() []protocol.Debug {
	return h.debugLog.snapshot()
}

// ClearDebugLogs empties the ring buffer.
func (h *Hub) ClearDebugLogs() {
	h.debugLog.clear()
	metrics.HubDebugLogEntries.Set(0)
	h.LogDebug("info", "Debug", "debug logs cleared", nil)
}
