package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// drain reads every envelope currently buffered for the client
func drain(c *Client) []Envelope {
	var out []Envelope
	for {
		select {
		case env, ok := <-c.Messages():
			if !ok {
				return out
			}
			out = append(out, env)
		default:
			return out
		}
	}
}

func TestHub_PresenceCounting(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("subscribes broadcast increasing counts to everyone", func(t *testing.T) {
		hub := NewHub(NewLocalPresenceCounter(), logger)

		first, err := hub.Subscribe(ctx)
		assert.NoError(t, err)

		msgs := drain(first)
		assert.Len(t, msgs, 1)
		assert.Equal(t, TypeVisitorCount, msgs[0].Type)
		assert.Equal(t, int64(1), msgs[0].Count)

		second, err := hub.Subscribe(ctx)
		assert.NoError(t, err)

		// The joining client sees the new count too
		assert.Equal(t, []Envelope{VisitorCount(2)}, drain(second))
		// And so does the client that was already subscribed
		assert.Equal(t, []Envelope{VisitorCount(2)}, drain(first))

		third, err := hub.Subscribe(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []Envelope{VisitorCount(3)}, drain(third))
		assert.Equal(t, []Envelope{VisitorCount(3)}, drain(first))
		assert.Equal(t, []Envelope{VisitorCount(3)}, drain(second))
	})

	t.Run("unsubscribes broadcast decreasing counts to the remainder", func(t *testing.T) {
		hub := NewHub(NewLocalPresenceCounter(), logger)

		first, _ := hub.Subscribe(ctx)
		second, _ := hub.Subscribe(ctx)
		third, _ := hub.Subscribe(ctx)
		drain(first)
		drain(second)
		drain(third)

		hub.Unsubscribe(ctx, third)
		assert.Equal(t, []Envelope{VisitorCount(2)}, drain(first))
		assert.Equal(t, []Envelope{VisitorCount(2)}, drain(second))

		hub.Unsubscribe(ctx, second)
		assert.Equal(t, []Envelope{VisitorCount(1)}, drain(first))

		assert.Equal(t, 1, hub.Len())
	})

	t.Run("unsubscribe is idempotent", func(t *testing.T) {
		hub := NewHub(NewLocalPresenceCounter(), logger)

		first, _ := hub.Subscribe(ctx)
		second, _ := hub.Subscribe(ctx)
		drain(first)
		drain(second)

		hub.Unsubscribe(ctx, second)
		hub.Unsubscribe(ctx, second)

		// Only one decrement happened
		assert.Equal(t, []Envelope{VisitorCount(1)}, drain(first))
		assert.Equal(t, 1, hub.Len())
	})
}

func TestHub_Publish(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("delivers a donation envelope to every subscriber", func(t *testing.T) {
		hub := NewHub(NewLocalPresenceCounter(), logger)

		first, _ := hub.Subscribe(ctx)
		second, _ := hub.Subscribe(ctx)
		drain(first)
		drain(second)

		now := time.Now()
		hub.Publish(DonationAnnouncement(500, "とくめー", "応援！", now))

		for _, client := range []*Client{first, second} {
			msgs := drain(client)
			assert.Len(t, msgs, 1)
			assert.Equal(t, TypeDonation, msgs[0].Type)
			assert.Equal(t, int64(500), msgs[0].Amount)
			assert.Equal(t, "とくめー", msgs[0].DonorName)
			assert.Equal(t, "応援！", msgs[0].Message)
			assert.Equal(t, now, msgs[0].Timestamp)
		}
	})

	t.Run("a stuck client does not block delivery to the rest", func(t *testing.T) {
		hub := NewHub(NewLocalPresenceCounter(), logger)

		stuck, _ := hub.Subscribe(ctx)
		healthy, _ := hub.Subscribe(ctx)
		drain(healthy)

		// Fill the stuck client's buffer so further sends would block
		for i := 0; i < clientBuffer+4; i++ {
			hub.Publish(VisitorCount(int64(i)))
		}

		// The healthy client keeps reading while the stuck one never does
		drain(healthy)

		hub.Publish(DonationAnnouncement(1000, "Anonymous", "", time.Now()))

		msgs := drain(healthy)
		assert.Len(t, msgs, 1)
		assert.Equal(t, TypeDonation, msgs[0].Type)

		// The stuck client kept its buffered prefix and lost the overflow
		assert.LessOrEqual(t, len(drain(stuck)), clientBuffer)
	})

	t.Run("per-client order matches publish order", func(t *testing.T) {
		hub := NewHub(NewLocalPresenceCounter(), logger)

		client, _ := hub.Subscribe(ctx)
		drain(client)

		for i := 1; i <= 5; i++ {
			hub.Publish(DonationAnnouncement(int64(i), "Anonymous", "", time.Time{}))
		}

		msgs := drain(client)
		assert.Len(t, msgs, 5)
		for i, msg := range msgs {
			assert.Equal(t, int64(i+1), msg.Amount)
		}
	})
}
