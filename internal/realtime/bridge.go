package realtime

import (
	"context"
	"encoding/json"

	"github.com/furukawa1020/furukawalabo1/pkg/messaging"
	"go.uber.org/zap"
)

// Bridge subscribes the shared Redis broadcast channel and republishes
// every envelope into the local hub, so donations recorded by any process
// reach the clients connected to this one.
type Bridge struct {
	client  messaging.RedisClient
	hub     *Hub
	channel string
	logger  *zap.Logger
}

// NewBridge creates a bridge between the shared channel and a local hub
func NewBridge(client messaging.RedisClient, hub *Hub, channel string, logger *zap.Logger) *Bridge {
	return &Bridge{
		client:  client,
		hub:     hub,
		channel: channel,
		logger:  logger,
	}
}

// Run consumes the shared channel until the context is cancelled. A
// malformed message is logged and skipped; it never stops the bridge.
func (b *Bridge) Run(ctx context.Context) error {
	messages, err := b.client.Subscribe(ctx, b.channel)
	if err != nil {
		return err
	}

	b.logger.Info("Realtime bridge started", zap.String("channel", b.channel))

	for msg := range messages {
		var env Envelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil {
			b.logger.Warn("Discarding malformed broadcast message", zap.Error(err))
			continue
		}
		b.hub.Publish(env)
	}

	b.logger.Info("Realtime bridge stopped")
	return nil
}
