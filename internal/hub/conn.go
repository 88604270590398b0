package hub

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ngeran/xaos/internal/errors"
	"github.com/ngeran/xaos/internal/protocol"
)

// Conn is one live connection's registry record plus its bounded outbound
// queue. The transport layer drains Outbound and watches Done; everything
// else goes through the hub.
type Conn struct {
	id          uuid.UUID
	remoteAddr  string
	userAgent   string
	connectedAt time.Time
	clock       clockwork.Clock

	// Guarded by the hub's registry lock.
	subscriptions map[string]struct{}

	lastActivity   atomic.Int64 // unix nanos
	lastPingSentAt atomic.Int64 // unix nanos, 0 = no ping outstanding
	pingLatency    atomic.Int64 // nanoseconds, 0 = never measured

	messagesSent     atomic.Uint64
	messagesReceived atomic.Uint64
	bytesSent        atomic.Uint64
	bytesReceived    atomic.Uint64

	sendCh    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newConn(remoteAddr, userAgent string, queueCapacity int, clock clockwork.Clock) *Conn {
	if queueCapacity <= 0 {
		queueCapacity = 1
	}
	c := &Conn{
		id:            uuid.New(),
		remoteAddr:    remoteAddr,
		userAgent:     userAgent,
		connectedAt:   clock.Now(),
		clock:         clock,
		subscriptions: make(map[string]struct{}),
		sendCh:        make(chan []byte, queueCapacity),
		done:          make(chan struct{}),
	}
	c.lastActivity.Store(c.connectedAt.UnixNano())
	return c
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() uuid.UUID { return c.id }

// RemoteAddr returns the remote address recorded at accept time.
func (c *Conn) RemoteAddr() string { return c.remoteAddr }

// Outbound is the bounded queue of encoded frames awaiting delivery.
// Frames are delivered in enqueue order.
func (c *Conn) Outbound() <-chan []byte { return c.sendCh }

// Done is closed when the connection is removed from the registry.
func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// trySend enqueues without blocking. A full queue is the caller's signal
// that this client has stalled; the message is dropped for this connection
// only.
func (c *Conn) trySend(data []byte) error {
	select {
	case <-c.done:
		return errors.SendFailedError("connection closed")
	default:
	}

	select {
	case c.sendCh <- data:
		c.messagesSent.Add(1)
		c.bytesSent.Add(uint64(len(data)))
		return nil
	default:
		return errors.QueueFullError("outbound queue full")
	}
}

func (c *Conn) touch() {
	c.lastActivity.Store(c.clock.Now().UnixNano())
}

func (c *Conn) stale(now time.Time, timeout time.Duration) bool {
	last := time.Unix(0, c.lastActivity.Load())
	return now.Sub(last) > timeout
}

func (c *Conn) ip() string {
	if c.remoteAddr == "" {
		return "Unknown"
	}
	if host, _, err := net.SplitHostPort(c.remoteAddr); err == nil {
		return host
	}
	return c.remoteAddr
}

func (c *Conn) details() protocol.ConnectionInfo {
	return protocol.ConnectionInfo{
		ConnectionID: c.id,
		IP:           c.ip(),
		ConnectedAt:  c.connectedAt,
		UserAgent:    c.userAgent,
	}
}

func (c *Conn) summary(now time.Time) protocol.ConnectionSummary {
	return protocol.ConnectionSummary{
		ID:                c.id,
		IP:                c.ip(),
		ConnectedDuration: int64(now.Sub(c.connectedAt).Seconds()),
		MessageCount:      c.messagesSent.Load() + c.messagesReceived.Load(),
		BytesSent:         c.bytesSent.Load(),
		BytesReceived:     c.bytesReceived.Load(),
	}
}
