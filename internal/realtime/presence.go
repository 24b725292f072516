package realtime

import (
	"context"
	"sync/atomic"

	"github.com/furukawa1020/furukawalabo1/pkg/messaging"
)

// PresenceCounter tracks the number of currently-connected realtime
// clients. Implementations must provide atomic increment/decrement so the
// count stays correct under concurrent subscribe/unsubscribe storms; the
// hub never reads-then-writes the count in application code.
type PresenceCounter interface {
	Incr(ctx context.Context) (int64, error)
	Decr(ctx context.Context) (int64, error)
}

// redisPresenceCounter keeps the count in a shared Redis key so every
// process in the cluster observes the same number. The count is ephemeral
// presence data; it resets with the store.
type redisPresenceCounter struct {
	client messaging.RedisClient
	key    string
}

// NewRedisPresenceCounter creates a presence counter backed by Redis INCR/DECR
func NewRedisPresenceCounter(client messaging.RedisClient, key string) PresenceCounter {
	return &redisPresenceCounter{
		client: client,
		key:    key,
	}
}

func (p *redisPresenceCounter) Incr(ctx context.Context) (int64, error) {
	return p.client.Incr(ctx, p.key)
}

func (p *redisPresenceCounter) Decr(ctx context.Context) (int64, error) {
	return p.client.Decr(ctx, p.key)
}

// localPresenceCounter is a single-process fallback used when Redis is
// not configured, and by tests.
type localPresenceCounter struct {
	count int64
}

// NewLocalPresenceCounter creates an in-process presence counter
func NewLocalPresenceCounter() PresenceCounter {
	return &localPresenceCounter{}
}

func (p *localPresenceCounter) Incr(ctx context.Context) (int64, error) {
	return atomic.AddInt64(&p.count, 1), nil
}

func (p *localPresenceCounter) Decr(ctx context.Context) (int64, error) {
	return atomic.AddInt64(&p.count, -1), nil
}
