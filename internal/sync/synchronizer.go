package sync

import (
	"context"
	"fmt"
	"sync"

	"hospital-portal/internal/notify"
	"hospital-portal/internal/sector"

	"github.com/sirupsen/logrus"
)

// fetcher loads the scoped collection and swaps it into the snapshot.
// Implementations must leave the previous snapshot untouched on error.
type fetcher func(ctx context.Context) error

// synchronizer carries the subscription lifecycle every entity
// synchronizer shares: initial fetch, refetch on change events,
// resubscribe plus refetch on sector switches, teardown on Stop.
type synchronizer struct {
	name     string
	tables   []string
	channel  notify.Channel
	sector   *sector.Context
	log      *logrus.Logger
	fetch    fetcher
	filtered bool

	mu      sync.Mutex
	sub     *notify.Subscription
	unwatch func()
	cancel  context.CancelFunc
	runCtx  context.Context
	started bool
	lastErr error

	wg sync.WaitGroup
}

// Start fetches the initial snapshot and begins following change events.
// A failed initial fetch does not abort the start; the synchronizer comes
// up empty with the error recorded and recovers on the next event.
func (s *synchronizer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.runCtx, s.cancel = context.WithCancel(ctx)
	runCtx := s.runCtx
	s.mu.Unlock()

	if err := s.resubscribe(runCtx); err != nil {
		s.mu.Lock()
		s.started = false
		s.mu.Unlock()
		s.cancel()
		return fmt.Errorf("failed to start %s synchronizer: %w", s.name, err)
	}

	if err := s.Refresh(runCtx); err != nil {
		s.log.Warnf("Failed to load initial %s snapshot: %+v", s.name, err)
	}

	s.unwatch = s.sector.Watch(func(label string) {
		if err := s.resubscribe(runCtx); err != nil {
			s.log.Warnf("Failed to resubscribe %s after sector switch: %+v", s.name, err)
		}
		if err := s.Refresh(runCtx); err != nil {
			s.log.Warnf("Failed to refresh %s after sector switch: %+v", s.name, err)
		}
	})

	s.wg.Add(1)
	go s.run(runCtx)

	return nil
}

// resubscribe opens a subscription for the current scope and closes the
// previous one. Subscribing first means a switch never drops the feed.
func (s *synchronizer) resubscribe(ctx context.Context) error {
	filter := notify.Filter{}
	if s.filtered {
		filter.Sector = s.sector.Current()
	}

	next, err := s.channel.Subscribe(ctx, filter, s.tables...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if !s.started {
		// Stop won the race with an in-flight sector switch; adopting
		// the subscription now would leave nobody to close it.
		s.mu.Unlock()
		next.Close()
		return nil
	}
	prev := s.sub
	s.sub = next
	s.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return nil
}

func (s *synchronizer) run(ctx context.Context) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		sub := s.sub
		s.mu.Unlock()
		if sub == nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-sub.Done():
			// Replaced during a sector switch; loop to pick up the
			// new subscription.
		case event := <-sub.Events():
			if err := s.Refresh(ctx); err != nil {
				s.log.Warnf("Failed to refresh %s after %s on %s: %+v", s.name, event.Op, event.Table, err)
			}
		}
	}
}

// Refresh re-runs the scoped fetch. On failure the previous snapshot
// stays visible and the error is recorded until the next success.
func (s *synchronizer) Refresh(ctx context.Context) error {
	err := s.fetch(ctx)

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	return err
}

// LastError reports the most recent fetch failure, nil after a success
func (s *synchronizer) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Stop tears down the subscription, the sector watch and the event loop
func (s *synchronizer) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	unwatch := s.unwatch
	sub := s.sub
	s.sub = nil
	s.unwatch = nil
	s.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}
	if cancel != nil {
		cancel()
	}
	if sub != nil {
		sub.Close()
	}
	s.wg.Wait()
}
