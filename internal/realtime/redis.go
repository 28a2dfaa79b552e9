package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "notifications:"

// RedisBridge shares change events between API instances. Publish writes to
// a per-user Redis channel; Run forwards everything it receives into the
// local Hub.
type RedisBridge struct {
	client *redis.Client
	hub    *Hub
	logger *zap.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

func NewRedisBridge(client *redis.Client, hub *Hub, logger *zap.Logger) *RedisBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBridge{
		client: client,
		hub:    hub,
		logger: logger,
		ready:  make(chan struct{}),
	}
}

func ChannelFor(userID uuid.UUID) string {
	return channelPrefix + userID.String()
}

func (b *RedisBridge) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := b.client.Publish(ctx, ChannelFor(event.Notification.UserID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Ready is closed once Run holds its Redis subscription.
func (b *RedisBridge) Ready() <-chan struct{} {
	return b.ready
}

func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s*: %w", channelPrefix, err)
	}
	b.readyOnce.Do(func() { close(b.ready) })

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("discarding malformed notification event",
					zap.String("channel", msg.Channel),
					zap.Error(err),
				)
				continue
			}
			if err := b.hub.Publish(ctx, event); err != nil {
				return nil
			}
		}
	}
}
