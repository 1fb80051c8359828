package ws

import (
	"context"
	"log"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	pingInterval = 25 * time.Second
	pingTimeout  = 5 * time.Second
)

// Client is one live subscription of a user to a channel. A user with
// several tabs open holds several independent clients.
type Client struct {
	ChannelID uint
	UserID    uint

	conn Conn
	send chan Event

	ctx    context.Context
	cancel context.CancelFunc
}

// Done is closed once the client has been unsubscribed, whether by the
// handler or by the hub's failed-delivery cleanup.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Hub tracks which clients are subscribed to which channel and fans
// events out to them. All subscriber-set mutation goes through the hub;
// delivery I/O never happens under the lock.
type Hub struct {
	mu       sync.RWMutex
	channels map[uint]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		channels: map[uint]map[*Client]struct{}{},
	}
}

// Subscribe registers a new client for a channel and starts its write and
// keepalive loops. It always succeeds; authentication happens before this.
func (h *Hub) Subscribe(channelID, userID uint, conn Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		ChannelID: channelID,
		UserID:    userID,
		conn:      conn,
		send:      make(chan Event, sendBuffer),
		ctx:       ctx,
		cancel:    cancel,
	}

	h.mu.Lock()
	if h.channels[channelID] == nil {
		h.channels[channelID] = map[*Client]struct{}{}
	}
	h.channels[channelID][c] = struct{}{}
	h.mu.Unlock()

	go c.writeLoop(h)
	go c.keepAliveLoop(h)

	return c
}

// Unsubscribe removes exactly this client and closes its transport.
// Calling it twice is fine; racing disconnect paths both land here.
func (h *Hub) Unsubscribe(c *Client) {
	c.cancel()

	h.mu.Lock()
	if set, ok := h.channels[c.ChannelID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.channels, c.ChannelID)
		}
	}
	h.mu.Unlock()

	_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
}

// Broadcast delivers ev to every client subscribed to the channel at call
// time. The subscriber set is snapshotted under the lock and delivery
// happens against the copy, so a slow send never blocks the registry.
// A client whose send buffer is already full is treated like a dead
// transport and unsubscribed (disconnect-on-slow-consumer).
func (h *Hub) Broadcast(channelID uint, ev Event) {
	h.mu.RLock()
	set := h.channels[channelID]
	targets := make([]*Client, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- ev:
		default:
			h.Unsubscribe(c)
		}
	}
}

// SubscriberCount reports how many live clients a channel has.
func (h *Hub) SubscriberCount(channelID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channelID])
}

// Shutdown drains every live client. The hub is empty but usable afterwards.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	all := make([]*Client, 0)
	for _, set := range h.channels {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.Unsubscribe(c)
	}
}

// writeLoop is the single writer for one client, which keeps delivery to
// that client in broadcast order.
func (c *Client) writeLoop(h *Hub) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.send:
			writeCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := c.conn.Write(writeCtx, ev)
			cancel()
			if err != nil {
				// Dead transport: clean up now instead of waiting for an
				// explicit disconnect that may never arrive.
				log.Printf("ws: dropping subscriber (channel=%d user=%d): %v", c.ChannelID, c.UserID, err)
				h.Unsubscribe(c)
				return
			}
		}
	}
}

func (c *Client) keepAliveLoop(h *Hub) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), pingTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				h.Unsubscribe(c)
				return
			}
		}
	}
}
