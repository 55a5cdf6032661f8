package notifications

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"sonance/internal/observability"
)

const (
	maxConnsPerUser = 8
	maxTotalConns   = 10000
	clientBuffer    = 64
)

var (
	// ErrUserConnLimit is returned when a user already holds maxConnsPerUser sockets.
	ErrUserConnLimit = errors.New("user connection limit reached")
	// ErrHubFull is returned when the process holds maxTotalConns sockets.
	ErrHubFull = errors.New("server connection limit reached")
)

// Client is one open socket for a user. The transport drains Send and stops
// when it is closed.
type Client struct {
	UserID uint
	Send   chan []byte
}

// Hub maps user IDs to their open sockets and fans realtime payloads out to
// them.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uint]map[*Client]struct{}
	total  int
	closed bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Register adds a socket for userID.
func (h *Hub) Register(userID uint) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.total >= maxTotalConns {
		return nil, ErrHubFull
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserConnLimit
	}

	c := &Client{UserID: userID, Send: make(chan []byte, clientBuffer)}
	m[c] = struct{}{}
	h.total++
	observability.RealtimeConnections.Inc()
	return c, nil
}

// Unregister removes c and closes its Send channel. Calling it twice is safe.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[c.UserID]
	if !ok {
		return
	}
	if _, ok := m[c]; !ok {
		return
	}
	delete(m, c)
	if len(m) == 0 {
		delete(h.conns, c.UserID)
	}
	h.total--
	close(c.Send)
	observability.RealtimeConnections.Dec()
}

// Broadcast hands payload to every socket userID has open and returns how
// many accepted it. A socket with a full buffer misses the message.
func (h *Hub) Broadcast(userID uint, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for c := range h.conns[userID] {
		select {
		case c.Send <- payload:
			sent++
		default:
			observability.RealtimeDrops.WithLabelValues("buffer_full").Inc()
		}
	}
	return sent
}

// Connections reports how many sockets userID has open.
func (h *Hub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// StartWiring subscribes n to every user channel and forwards each message to
// the sockets of the user it names.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		userID, ok := parseUserChannel(channel)
		if !ok {
			slog.Warn("invalid notification channel", slog.String("channel", channel))
			observability.RealtimeDrops.WithLabelValues("bad_channel").Inc()
			return
		}
		if h.Broadcast(userID, []byte(payload)) == 0 {
			observability.RealtimeDrops.WithLabelValues("offline").Inc()
		}
	})
}

// Close drops every socket and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, m := range h.conns {
		for c := range m {
			close(c.Send)
			observability.RealtimeConnections.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.total = 0
	h.closed = true
}

func parseUserChannel(channel string) (uint, bool) {
	rest, ok := strings.CutPrefix(channel, userChannelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
