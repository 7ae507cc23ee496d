package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"hospital-portal/internal/domain/entity"
	"hospital-portal/internal/domain/repository"
	"hospital-portal/internal/notify"
	"hospital-portal/internal/sector"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SlotKey addresses one cell of the allocation map. The date is implicit:
// the synchronizer holds one day in view at a time.
type SlotKey struct {
	RoomID uuid.UUID
	Shift  entity.Shift
}

// AllocationSync keeps the allocation map for one date, scoped to the
// rooms of the selected sector. Slots are indexed for O(1) lookup.
type AllocationSync struct {
	synchronizer
	db   *gorm.DB
	repo repository.RoomAllocationRepository

	snapMu stdsync.RWMutex
	date   string
	slots  map[SlotKey]entity.RoomAllocation
	list   []entity.RoomAllocation
}

func NewAllocationSync(
	db *gorm.DB,
	repo repository.RoomAllocationRepository,
	channel notify.Channel,
	sectorCtx *sector.Context,
	log *logrus.Logger,
) *AllocationSync {
	s := &AllocationSync{
		db:    db,
		repo:  repo,
		date:  time.Now().Format("2006-01-02"),
		slots: make(map[SlotKey]entity.RoomAllocation),
	}
	s.synchronizer = synchronizer{
		name:     "allocations",
		tables:   []string{notify.TableAllocations},
		channel:  channel,
		sector:   sectorCtx,
		log:      log,
		fetch:    s.load,
		filtered: true,
	}
	return s
}

func (s *AllocationSync) load(ctx context.Context) error {
	s.snapMu.RLock()
	date := s.date
	s.snapMu.RUnlock()

	allocations, err := s.repo.FindByFilter(s.db.WithContext(ctx), &entity.AllocationFilter{
		Date:   date,
		Sector: s.sector.Current(),
	})
	if err != nil {
		return fmt.Errorf("failed to fetch allocations: %w", err)
	}

	slots := make(map[SlotKey]entity.RoomAllocation, len(allocations))
	for _, a := range allocations {
		slots[SlotKey{RoomID: a.RoomID, Shift: a.Shift}] = a
	}

	s.snapMu.Lock()
	if s.date != date {
		// The date moved while we were fetching; drop the stale result.
		s.snapMu.Unlock()
		return nil
	}
	s.slots = slots
	s.list = allocations
	s.snapMu.Unlock()
	return nil
}

// SetDate moves the map to another day and refetches.
func (s *AllocationSync) SetDate(ctx context.Context, date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}

	s.snapMu.Lock()
	if s.date == date {
		s.snapMu.Unlock()
		return nil
	}
	s.date = date
	s.snapMu.Unlock()

	return s.Refresh(ctx)
}

// Date reports the day currently in view
func (s *AllocationSync) Date() string {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.date
}

// Lookup resolves one slot of the day in view
func (s *AllocationSync) Lookup(roomID uuid.UUID, shift entity.Shift) (entity.RoomAllocation, bool) {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()

	allocation, ok := s.slots[SlotKey{RoomID: roomID, Shift: shift}]
	return allocation, ok
}

// Allocations returns a copy of the day's allocations
func (s *AllocationSync) Allocations() []entity.RoomAllocation {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()

	out := make([]entity.RoomAllocation, len(s.list))
	copy(out, s.list)
	return out
}
