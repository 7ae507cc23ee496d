package sync

import (
	"context"
	stdsync "sync"
	"sync/atomic"
	"time"

	"hospital-portal/internal/domain/repository"
	"hospital-portal/internal/notify"
	"hospital-portal/internal/sector"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultSessionIdleTTL = 30 * time.Minute
	defaultSweepInterval  = 5 * time.Minute
)

// ManagerConfig tunes session expiry. Zero values take the defaults.
type ManagerConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// Manager owns one live Session per signed-in user. Sessions are built on
// first use, kept warm across requests and swept after going idle so their
// subscriptions are released.
//
// Call Stop() during graceful shutdown.
type Manager struct {
	db      *gorm.DB
	channel notify.Channel
	store   sector.SelectionStore
	log     *logrus.Logger

	profileRepo    repository.ProfileRepository
	roomRepo       repository.RoomRepository
	allocationRepo repository.RoomAllocationRepository

	idleTTL       time.Duration
	sweepInterval time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc

	mu       stdsync.Mutex
	sessions map[uuid.UUID]*Session

	stopChan chan struct{}
	wg       stdsync.WaitGroup
	stopped  atomic.Bool
}

// NewManager creates a session manager and starts its idle sweep goroutine.
func NewManager(
	db *gorm.DB,
	channel notify.Channel,
	store sector.SelectionStore,
	profileRepo repository.ProfileRepository,
	roomRepo repository.RoomRepository,
	allocationRepo repository.RoomAllocationRepository,
	log *logrus.Logger,
	cfg ManagerConfig,
) *Manager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultSessionIdleTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	baseCtx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		db:             db,
		channel:        channel,
		store:          store,
		log:            log,
		profileRepo:    profileRepo,
		roomRepo:       roomRepo,
		allocationRepo: allocationRepo,
		idleTTL:        cfg.IdleTTL,
		sweepInterval:  cfg.SweepInterval,
		baseCtx:        baseCtx,
		cancel:         cancel,
		sessions:       make(map[uuid.UUID]*Session),
		stopChan:       make(chan struct{}),
	}

	m.wg.Add(1)
	go m.sweepLoop()

	return m
}

// Acquire returns the user's session, building and starting it on first
// use. The request context only covers session construction; the session
// itself lives on the manager's context.
func (m *Manager) Acquire(ctx context.Context, identity sector.Identity) (*Session, error) {
	m.mu.Lock()
	if session, ok := m.sessions[identity.ID]; ok {
		session.Touch()
		m.mu.Unlock()
		return session, nil
	}
	m.mu.Unlock()

	sectorCtx := sector.NewContext(ctx, identity, m.store, m.log)
	session := NewSession(
		sectorCtx,
		NewProfileSync(m.db, m.profileRepo, m.channel, sectorCtx, m.log),
		NewRoomSync(m.db, m.roomRepo, m.channel, sectorCtx, m.log),
		NewAllocationSync(m.db, m.allocationRepo, m.channel, sectorCtx, m.log),
	)
	if err := session.Start(m.baseCtx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.sessions[identity.ID]; ok {
		// Lost the race against a parallel request; keep theirs.
		m.mu.Unlock()
		session.Stop()
		existing.Touch()
		return existing, nil
	}
	m.sessions[identity.ID] = session
	m.mu.Unlock()

	m.log.Infof("Started sync session for user %s", identity.ID)
	return session, nil
}

// Get returns the user's session without creating one
func (m *Manager) Get(userID uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[userID]
	if ok {
		session.Touch()
	}
	return session, ok
}

// Count reports how many sessions are live
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) sweepLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.sweepIdleSessions()
		}
	}
}

func (m *Manager) sweepIdleSessions() {
	cutoff := time.Now().Add(-m.idleTTL)

	m.mu.Lock()
	var expired []*Session
	for id, session := range m.sessions {
		if session.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, session)
		}
	}
	m.mu.Unlock()

	for _, session := range expired {
		session.Stop()
	}
	if len(expired) > 0 {
		m.log.Infof("Swept %d idle sync sessions", len(expired))
	}
}

// Stop shuts down the sweep loop and every live session.
// Safe to call multiple times.
func (m *Manager) Stop() {
	if m.stopped.CompareAndSwap(false, true) {
		close(m.stopChan)
		m.wg.Wait()

		m.mu.Lock()
		sessions := make([]*Session, 0, len(m.sessions))
		for _, session := range m.sessions {
			sessions = append(sessions, session)
		}
		m.sessions = make(map[uuid.UUID]*Session)
		m.mu.Unlock()

		for _, session := range sessions {
			session.Stop()
		}
		m.cancel()
		m.log.Info("Sync session manager stopped")
	}
}
