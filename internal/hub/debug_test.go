package hub

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngeran/xaos/internal/protocol"
)

func TestDebugRingOverwritesOldest(t *testing.T) {
	r := newDebugRing(3)

	for i := 1; i <= 4; i++ {
		r.add(protocol.Debug{Message: fmt.Sprintf("entry %d", i)})
	}

	snap := r.snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "entry 2", snap[0].Message)
	assert.Equal(t, "entry 3", snap[1].Message)
	assert.Equal(t, "entry 4", snap[2].Message)
}

func TestDebugRingSnapshotBeforeWrap(t *testing.T) {
	r := newDebugRing(5)
	r.add(protocol.Debug{Message: "a"})
	r.add(protocol.Debug{Message: "b"})

	snap := r.snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].Message)
	assert.Equal(t, "b", snap[1].Message)
}

func TestDebugRingClear(t *testing.T) {
	r := newDebugRing(2)
	r.add(protocol.Debug{Message: "a"})
	r.add(protocol.Debug{Message: "b"})
	r.add(protocol.Debug{Message: "c"})

	r.clear()
	assert.Zero(t, r.size())
	assert.Empty(t, r.snapshot())

	// Refills cleanly after a clear.
	r.add(protocol.Debug{Message: "d"})
	snap := r.snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "d", snap[0].Message)
}

func TestLogDebugDisabledIsNoOp(t *testing.T) {
	h, _ := newTestHub(t, nil)

	h.LogDebug("info", "Test", "ignored", nil)
	assert.Empty(t, h.DebugLogs())
	assert.Zero(t, h.Status().DebugLogCount)
}

func TestLogDebugRecordsAndRelays(t *testing.T) {
	h, clock := newTestHub(t, func(cfg *Config) { cfg.DebugEnabled = true })

	c := mustRegister(t, h)
	h.UpdateSubscriptions(c.ID(), []string{protocol.TopicDebug.String()}, nil)
	drainOutbound(t, c)
	h.ClearDebugLogs()

	h.LogDebug("warn", "HealthCheck", "something odd", map[string]int{"count": 3})

	logs := h.DebugLogs()
	// ClearDebugLogs itself leaves a trace entry when debug is on.
	require.Len(t, logs, 2)
	entry := logs[1]
	assert.Equal(t, "warn", entry.Level)
	assert.Equal(t, "HealthCheck", entry.Component)
	assert.Equal(t, "something odd", entry.Message)
	assert.JSONEq(t, `{"count":3}`, string(entry.Data))
	assert.Equal(t, clock.Now(), entry.Timestamp)

	envs := drainOutbound(t, c)
	require.Len(t, envs, 2)
	relayed, ok := envs[1].(protocol.Debug)
	require.True(t, ok)
	assert.Equal(t, "something odd", relayed.Message)
}

func TestToggleDebugFlipsState(t *testing.T) {
	h, _ := newTestHub(t, nil)

	assert.False(t, h.DebugEnabled())
	assert.True(t, h.ToggleDebug())
	assert.True(t, h.DebugEnabled())
	assert.False(t, h.ToggleDebug())
	assert.False(t, h.DebugEnabled())
}

func TestToggleDebugAffectsFutureEntriesOnly(t *testing.T) {
	h, _ := newTestHub(t, nil)

	h.LogDebug("info", "Test", "before enable", nil)
	assert.Empty(t, h.DebugLogs())

	h.ToggleDebug()
	h.LogDebug("info", "Test", "after enable", nil)

	logs := h.DebugLogs()
	require.NotEmpty(t, logs)
	for _, entry := range logs {
		assert.NotEqual(t, "before enable", entry.Message)
	}
	assert.Equal(t, "after enable", logs[len(logs)-1].Message)
}

func TestRegistrationLeavesTraceWhenDebugEnabled(t *testing.T) {
	h, _ := newTestHub(t, func(cfg *Config) { cfg.DebugEnabled = true })

	mustRegister(t, h)

	var components []string
	for _, entry := range h.DebugLogs() {
		components = append(components, entry.Component)
	}
	assert.Contains(t, components, "Connection")
}
