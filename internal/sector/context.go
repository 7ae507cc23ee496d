package sector

import (
	"context"
	"errors"
	"sync"

	"hospital-portal/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrUnknownSector = errors.New("unknown sector")

// Identity is the authenticated portal user attached to a session
type Identity struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Role    string    `json:"role"`
	IsAdmin bool      `json:"is_admin"`
}

// Context holds one session's selected sector and identity. Every scoped
// collection hangs off the current sector; switching replaces them
// wholesale through the registered watchers, old data is never merged.
type Context struct {
	identity Identity
	store    SelectionStore
	log      *logrus.Logger

	mu       sync.RWMutex
	current  string
	watchers map[int]func(sector string)
	nextID   int
}

// NewContext builds a session context, restoring the user's persisted
// sector selection when one exists.
func NewContext(ctx context.Context, identity Identity, store SelectionStore, log *logrus.Logger) *Context {
	current := entity.DefaultSector
	if store != nil {
		saved, err := store.Load(ctx, identity.ID)
		if err != nil {
			log.Warnf("Failed to load sector selection: %+v", err)
		} else if entity.IsValidSector(saved) {
			current = saved
		}
	}

	return &Context{
		identity: identity,
		store:    store,
		log:      log,
		current:  current,
		watchers: make(map[int]func(string)),
	}
}

func (c *Context) Identity() Identity {
	return c.identity
}

func (c *Context) Current() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Switch selects a new sector, persists the choice and notifies watchers.
// Selecting the current sector again is a no-op.
func (c *Context) Switch(ctx context.Context, sector string) error {
	if !entity.IsValidSector(sector) {
		return ErrUnknownSector
	}

	c.mu.Lock()
	if c.current == sector {
		c.mu.Unlock()
		return nil
	}
	c.current = sector
	watchers := make([]func(string), 0, len(c.watchers))
	for _, fn := range c.watchers {
		watchers = append(watchers, fn)
	}
	c.mu.Unlock()

	if c.store != nil {
		// Persistence is best effort; the in-memory switch already
		// happened and a failed save only costs the next session its
		// restored selection.
		if err := c.store.Save(ctx, c.identity.ID, sector); err != nil {
			c.log.Warnf("Failed to persist sector selection: %+v", err)
		}
	}

	for _, fn := range watchers {
		fn(sector)
	}
	return nil
}

// Watch registers a callback invoked after every sector switch. The
// returned cancel func unregisters it; calling cancel twice is safe.
func (c *Context) Watch(fn func(sector string)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.watchers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.watchers, id)
	}
}
