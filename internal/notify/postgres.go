package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const pgNotifyChannel = "portal_changes"

type pgSubscriber struct {
	filter Filter
	tables map[string]bool
}

// PostgresChannel rides the data store itself: events go out through
// pg_notify and come back on a LISTEN connection. It serves deployments
// that run without Redis.
type PostgresChannel struct {
	db       *gorm.DB
	listener *pq.Listener
	log      *logrus.Logger

	mu   sync.RWMutex
	subs map[*Subscription]pgSubscriber

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewPostgresChannel(db *gorm.DB, dsn string, log *logrus.Logger) (*PostgresChannel, error) {
	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warnf("Postgres listener event %d: %+v", ev, err)
		}
	})
	if err := listener.Listen(pgNotifyChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", pgNotifyChannel, err)
	}

	c := &PostgresChannel{
		db:       db,
		listener: listener,
		log:      log,
		subs:     make(map[*Subscription]pgSubscriber),
		stop:     make(chan struct{}),
	}

	c.wg.Add(1)
	go c.dispatchLoop()

	return c, nil
}

func (c *PostgresChannel) dispatchLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stop:
			return
		case n, ok := <-c.listener.Notify:
			if !ok {
				return
			}
			// A nil notification signals connection loss and re-establish.
			// Subscribers may have missed events; nothing to replay, the
			// next real event triggers a refetch anyway.
			if n == nil {
				c.log.Warn("Postgres listener reconnected, events may have been missed")
				continue
			}
			var event Event
			if err := json.Unmarshal([]byte(n.Extra), &event); err != nil {
				c.log.Warnf("Failed to decode change event: %+v", err)
				continue
			}
			c.deliver(event)
		}
	}
}

func (c *PostgresChannel) deliver(event Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()

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
}

func (c *PostgresChannel) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	err = c.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", pgNotifyChannel, string(payload)).Error
	if err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

func (c *PostgresChannel) Subscribe(ctx context.Context, filter Filter, tables ...string) (*Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

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
	c.subs[sub] = pgSubscriber{filter: filter, tables: tableSet}
	return sub, nil
}

func (c *PostgresChannel) Close() error {
	close(c.stop)
	err := c.listener.Close()
	c.wg.Wait()

	c.mu.Lock()
	c.subs = make(map[*Subscription]pgSubscriber)
	c.mu.Unlock()
	return err
}
