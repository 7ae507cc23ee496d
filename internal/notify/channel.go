package notify

import (
	"context"
	"errors"
	"sync"
)

var ErrChannelClosed = errors.New("notification channel closed")

// subscriptionBuffer bounds how many undelivered events a subscriber can
// hold before new ones are dropped. Dropping is safe: the next event, or
// the subscriber's own refresh, converges the state.
const subscriptionBuffer = 16

// Channel is the transport that tells connected sessions "something
// changed". Delivery is fire-and-forget and carries no payload guarantee;
// subscribers react by re-fetching whatever they have in scope.
type Channel interface {
	// Publish emits an event to every matching subscription.
	Publish(ctx context.Context, event Event) error
	// Subscribe opens an event feed for the given tables, restricted by
	// the filter. An empty table list means all tables.
	Subscribe(ctx context.Context, filter Filter, tables ...string) (*Subscription, error)
	// Close tears the channel down; open subscriptions go silent.
	Close() error
}

// Subscription is one live event feed. Events() never closes; consumers
// select against their own context or Done(). Close is idempotent and
// releases the feed's resources.
type Subscription struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
	detach func()
}

func newSubscription(detach func()) *Subscription {
	return &Subscription{
		events: make(chan Event, subscriptionBuffer),
		done:   make(chan struct{}),
		detach: detach,
	}
}

func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.detach != nil {
			s.detach()
		}
		close(s.done)
	})
}
