package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisChannelPrefix = "portal:changes:"

// RedisChannel broadcasts change events over Redis pub/sub so every
// portal instance sees writes made through every other one.
type RedisChannel struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewRedisChannel(client *redis.Client, log *logrus.Logger) *RedisChannel {
	return &RedisChannel{
		client: client,
		log:    log,
	}
}

func (c *RedisChannel) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	if err := c.client.Publish(ctx, redisChannelPrefix+event.Table, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

func (c *RedisChannel) Subscribe(ctx context.Context, filter Filter, tables ...string) (*Subscription, error) {
	channels := make([]string, 0, len(tables))
	for _, table := range tables {
		channels = append(channels, redisChannelPrefix+table)
	}
	if len(channels) == 0 {
		channels = append(channels,
			redisChannelPrefix+TableProfiles,
			redisChannelPrefix+TableRooms,
			redisChannelPrefix+TableAllocations,
		)
	}

	pubsub := c.client.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to change events: %w", err)
	}

	sub := newSubscription(func() {
		if err := pubsub.Close(); err != nil {
			c.log.Warnf("Failed to close pubsub subscription: %+v", err)
		}
	})

	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-sub.done:
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					c.log.Warnf("Failed to decode change event: %+v", err)
					continue
				}
				if !filter.Matches(event) {
					continue
				}
				select {
				case sub.events <- event:
				default:
					c.log.Warnf("Dropped change event for slow subscriber: table=%s op=%s", event.Table, event.Op)
				}
			}
		}
	}()

	return sub, nil
}

// Close is a no-op: the redis client is owned by the caller.
func (c *RedisChannel) Close() error {
	return nil
}
