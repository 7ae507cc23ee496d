package notify

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

type memorySubscriber struct {
	filter Filter
	tables map[string]bool
}

// MemoryChannel is an in-process Channel. It backs single-instance
// deployments and every test that needs a notification transport.
type MemoryChannel struct {
	log    *logrus.Logger
	mu     sync.RWMutex
	subs   map[*Subscription]memorySubscriber
	closed bool
}

func NewMemoryChannel(log *logrus.Logger) *MemoryChannel {
	return &MemoryChannel{
		log:  log,
		subs: make(map[*Subscription]memorySubscriber),
	}
}

func (c *MemoryChannel) Publish(ctx context.Context, event Event) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrChannelClosed
	}

	for sub, meta := range c.subs {
		if len(meta.tables) > 0 && !meta.tables[event.Table] {
			continue
		}
		if !meta.filter.Matches(event) {
			continue
		}
		select {
		case sub.events <- event:
		default:
			c.log.Warnf("Dropped change event for slow subscriber: table=%s op=%s", event.Table, event.Op)
		}
	}
	return nil
}

func (c *MemoryChannel) Subscribe(ctx context.Context, filter Filter, tables ...string) (*Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrChannelClosed
	}

	var sub *Subscription
	sub = newSubscription(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, sub)
	})

	tableSet := make(map[string]bool, len(tables))
	for _, t := range tables {
		tableSet[t] = true
	}
	c.subs[sub] = memorySubscriber{filter: filter, tables: tableSet}
	return sub, nil
}

func (c *MemoryChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.subs = make(map[*Subscription]memorySubscriber)
	return nil
}

// SubscriberCount reports how many subscriptions are live
func (c *MemoryChannel) SubscriberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}
