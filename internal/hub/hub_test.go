package hub

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngeran/xaos/internal/errors"
	"github.com/ngeran/xaos/internal/protocol"
)

func newTestHub(t *testing.T, mutate func(*Config)) (*Hub, *clockwork.FakeClock) {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	cfg.MaxConnections = 10
	cfg.QueueCapacity = 16
	if mutate != nil {
		mutate(&cfg)
	}

	h := New(cfg, clock)
	t.Cleanup(h.Stop)
	return h, clock
}

func mustRegister(t *testing.T, h *Hub) *Conn {
	t.Helper()
	c, err := h.Register("192.0.2.1:50000", "test-agent")
	require.NoError(t, err)
	return c
}

// drainOutbound empties and decodes everything queued for the connection.
func drainOutbound(t *testing.T, c *Conn) []protocol.Envelope {
	t.Helper()
	var out []protocol.Envelope
	for {
		select {
		case data := <-c.sendCh:
			env, err := protocol.Decode(data)
			require.NoError(t, err)
			out = append(out, env)
		default:
			return out
		}
	}
}

func nextEnvelope(t *testing.T, c *Conn) protocol.Envelope {
	t.Helper()
	select {
	case data := <-c.sendCh:
		env, err := protocol.Decode(data)
		require.NoError(t, err)
		return env
	default:
		t.Fatal("expected a queued envelope")
		return nil
	}
}

func TestRegisterSendsWelcomeAndStats(t *testing.T) {
	h, _ := newTestHub(t, nil)

	c := mustRegister(t, h)
	assert.Equal(t, 1, h.ActiveCount())

	welcome, ok := nextEnvelope(t, c).(protocol.ConnectionInfo)
	require.True(t, ok, "first envelope should be the welcome")
	assert.Equal(t, c.ID(), welcome.ConnectionID)
	assert.Equal(t, "192.0.2.1", welcome.IP)
	assert.Equal(t, "test-agent", welcome.UserAgent)

	stats, ok := nextEnvelope(t, c).(protocol.ActiveConnections)
	require.True(t, ok, "second envelope should be the stats snapshot")
	assert.Equal(t, 1, stats.Count)
	require.Len(t, stats.Connections, 1)
	assert.Equal(t, c.ID(), stats.Connections[0].ID)
}

func TestRegisterAnnouncesToExistingConnections(t *testing.T) {
	h, _ := newTestHub(t, nil)

	a := mustRegister(t, h)
	drainOutbound(t, a)

	mustRegister(t, h)

	stats, ok := nextEnvelope(t, a).(protocol.ActiveConnections)
	require.True(t, ok)
	assert.Equal(t, 2, stats.Count)
}

func TestRegisterEnforcesCapacity(t *testing.T) {
	h, _ := newTestHub(t, func(cfg *Config) { cfg.MaxConnections = 2 })

	mustRegister(t, h)
	mustRegister(t, h)

	_, err := h.Register("192.0.2.9:50000", "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeCapacityExceeded))
	assert.Equal(t, 2, h.ActiveCount(), "rejected attempt must not occupy a slot")
}

func TestCapacityFreedByRemoval(t *testing.T) {
	h, _ := newTestHub(t, func(cfg *Config) { cfg.MaxConnections = 1 })

	c := mustRegister(t, h)
	_, err := h.Register("192.0.2.2:50000", "")
	require.True(t, errors.IsType(err, errors.TypeCapacityExceeded))

	h.Remove(c.ID())
	mustRegister(t, h)
	assert.Equal(t, 1, h.ActiveCount())
}

func TestRemoveIsIdempotent(t *testing.T) {
	h, _ := newTestHub(t, nil)

	c := mustRegister(t, h)
	h.Remove(c.ID())
	h.Remove(c.ID())
	h.Remove(uuid.New())

	assert.Equal(t, 0, h.ActiveCount())

	select {
	case <-c.Done():
	default:
		t.Fatal("Done should be closed after removal")
	}
}

func TestRemoveAnnouncesToSurvivors(t *testing.T) {
	h, _ := newTestHub(t, nil)

	a := mustRegister(t, h)
	b := mustRegister(t, h)
	drainOutbound(t, a)
	drainOutbound(t, b)

	h.Remove(b.ID())

	stats, ok := nextEnvelope(t, a).(protocol.ActiveConnections)
	require.True(t, ok)
	assert.Equal(t, 1, stats.Count)
	assert.Empty(t, drainOutbound(t, b), "removed connection gets nothing")
}

func TestUpdateSubscriptionsUnknownIDIsNoOp(t *testing.T) {
	h, _ := newTestHub(t, nil)

	h.UpdateSubscriptions(uuid.New(), []string{"navigation"}, nil)
	assert.Equal(t, 0, h.ActiveCount())
}

func TestUpdateSubscriptionsAddAndRemove(t *testing.T) {
	h, _ := newTestHub(t, nil)

	c := mustRegister(t, h)
	drainOutbound(t, c)

	h.UpdateSubscriptions(c.ID(), []string{"navigation", "debug"}, nil)
	n, err := h.Broadcast(protocol.TopicNavigation, protocol.NavigationUpdated{Schema: "main"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	h.UpdateSubscriptions(c.ID(), nil, []string{"navigation"})
	n, err = h.Broadcast(protocol.TopicNavigation, protocol.NavigationUpdated{Schema: "main"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = h.Broadcast(protocol.TopicDebug, protocol.Debug{Level: "info"})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "other subscriptions survive a partial unsubscribe")
}

func TestSnapshotReportsConnectionAge(t *testing.T) {
	h, clock := newTestHub(t, nil)

	c := mustRegister(t, h)
	clock.Advance(5 * time.Second)

	snap := h.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, c.ID(), snap[0].ID)
	assert.Equal(t, "192.0.2.1", snap[0].IP)
	assert.EqualValues(t, 5, snap[0].ConnectedDuration)
}

func TestStopClosesAllConnections(t *testing.T) {
	h, _ := newTestHub(t, nil)

	a := mustRegister(t, h)
	b := mustRegister(t, h)

	h.Stop()

	assert.Equal(t, 0, h.ActiveCount())
	for _, c := range []*Conn{a, b} {
		select {
		case <-c.Done():
		default:
			t.Fatal("Done should be closed after Stop")
		}
	}
}

func TestConnIPParsing(t *testing.T) {
	h, _ := newTestHub(t, nil)

	c, err := h.Register("203.0.113.7:12345", "")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", c.details().IP)

	c2, err := h.Register("", "")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", c2.details().IP)

	c3, err := h.Register("no-port-here", "")
	require.NoError(t, err)
	assert.Equal(t, "no-port-here", c3.details().IP)
}
