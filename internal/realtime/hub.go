package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// clientBuffer is the per-client send buffer. A client that falls this
// far behind loses messages rather than blocking the fan-out loop.
const clientBuffer = 16

// Client is one subscribed realtime connection
type Client struct {
	ch chan Envelope
}

// Messages returns the channel the hub delivers envelopes on. The
// channel is closed when the client is unsubscribed.
func (c *Client) Messages() <-chan Envelope {
	return c.ch
}

// Hub is the process-local broadcast topic. It fans every published
// envelope out to all currently-subscribed clients and keeps the shared
// presence count in step with subscribe/unsubscribe.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	presence PresenceCounter
	announce Broadcaster
	logger   *zap.Logger
}

// NewHub creates a hub with the given presence counter. Count updates are
// announced locally unless SetAnnouncer installs a shared broadcaster.
func NewHub(presence PresenceCounter, logger *zap.Logger) *Hub {
	h := &Hub{
		clients:  make(map[*Client]struct{}),
		presence: presence,
		logger:   logger,
	}
	h.announce = NewHubBroadcaster(h)
	return h
}

// SetAnnouncer routes visitor-count updates through a shared broadcaster
// so every process in the cluster rebroadcasts them. Call before serving.
func (h *Hub) SetAnnouncer(b Broadcaster) {
	h.announce = b
}

// Subscribe registers a new client, increments the shared online count
// and broadcasts the updated count to every subscriber, including the
// client that just joined.
func (h *Hub) Subscribe(ctx context.Context) (*Client, error) {
	client := &Client{ch: make(chan Envelope, clientBuffer)}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	count, err := h.presence.Incr(ctx)
	if err != nil {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		return nil, err
	}

	if err := h.announce.Broadcast(ctx, VisitorCount(count)); err != nil {
		h.logger.Error("Failed to broadcast visitor count", zap.Error(err))
	}

	h.logger.Debug("Realtime client subscribed", zap.Int64("online", count))
	return client, nil
}

// Unsubscribe deregisters a client, decrements the shared online count
// and broadcasts the updated count to the remaining subscribers. It is
// safe to call more than once for the same client.
func (h *Hub) Unsubscribe(ctx context.Context, client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.ch)
	h.mu.Unlock()

	count, err := h.presence.Decr(ctx)
	if err != nil {
		h.logger.Error("Failed to decrement presence count", zap.Error(err))
		return
	}

	if err := h.announce.Broadcast(ctx, VisitorCount(count)); err != nil {
		h.logger.Error("Failed to broadcast visitor count", zap.Error(err))
	}

	h.logger.Debug("Realtime client unsubscribed", zap.Int64("online", count))
}

// Publish delivers the envelope to every currently-subscribed client.
// Delivery is best-effort and at-most-once: a client whose buffer is
// full simply misses the message, and one dead client never stops the
// rest of the fan-out.
func (h *Hub) Publish(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.ch <- env:
		default:
			h.logger.Warn("Dropping realtime message for slow client",
				zap.String("type", env.Type))
		}
	}
}

// Len returns the number of locally-subscribed clients
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
