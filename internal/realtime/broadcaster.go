package realtime

import (
	"context"
	"fmt"

	"github.com/furukawa1020/furukawalabo1/pkg/messaging"
	"go.uber.org/zap"
)

// Channel is the shared broadcast topic name. Webhook-handling processes
// publish here and every API process bridges it into its local hub.
const Channel = "donations_channel"

// Broadcaster publishes envelopes to the shared broadcast topic
type Broadcaster interface {
	Broadcast(ctx context.Context, env Envelope) error
}

type redisBroadcaster struct {
	client  messaging.RedisClient
	channel string
	logger  *zap.Logger
}

// NewRedisBroadcaster creates a broadcaster that publishes envelopes to a
// Redis pub/sub channel
func NewRedisBroadcaster(client messaging.RedisClient, channel string, logger *zap.Logger) Broadcaster {
	return &redisBroadcaster{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

// Broadcast publishes the envelope to the shared channel
func (b *redisBroadcaster) Broadcast(ctx context.Context, env Envelope) error {
	if err := b.client.Publish(ctx, b.channel, env); err != nil {
		b.logger.Error("Failed to publish broadcast envelope",
			zap.String("type", env.Type),
			zap.Error(err))
		return fmt.Errorf("failed to publish broadcast envelope: %w", err)
	}
	return nil
}

// hubBroadcaster delivers envelopes straight into a local hub. Used when
// Redis is not configured (single-process deployments) and by tests.
type hubBroadcaster struct {
	hub *Hub
}

// NewHubBroadcaster creates a broadcaster bound to one local hub
func NewHubBroadcaster(hub *Hub) Broadcaster {
	return &hubBroadcaster{hub: hub}
}

func (b *hubBroadcaster) Broadcast(ctx context.Context, env Envelope) error {
	b.hub.Publish(env)
	return nil
}
