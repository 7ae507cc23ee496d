package sync

import (
	"context"
	"fmt"
	stdsync "sync"

	"hospital-portal/internal/domain/entity"
	"hospital-portal/internal/domain/repository"
	"hospital-portal/internal/notify"
	"hospital-portal/internal/sector"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RoomSync keeps the rooms of the currently selected sector, in display
// order. A sector switch replaces the whole snapshot.
type RoomSync struct {
	synchronizer
	db   *gorm.DB
	repo repository.RoomRepository

	snapMu stdsync.RWMutex
	rooms  []entity.Room
}

func NewRoomSync(
	db *gorm.DB,
	repo repository.RoomRepository,
	channel notify.Channel,
	sectorCtx *sector.Context,
	log *logrus.Logger,
) *RoomSync {
	s := &RoomSync{
		db:   db,
		repo: repo,
	}
	s.synchronizer = synchronizer{
		name:     "rooms",
		tables:   []string{notify.TableRooms},
		channel:  channel,
		sector:   sectorCtx,
		log:      log,
		fetch:    s.load,
		filtered: true,
	}
	return s
}

func (s *RoomSync) load(ctx context.Context) error {
	rooms, err := s.repo.FindBySector(s.db.WithContext(ctx), s.sector.Current())
	if err != nil {
		return fmt.Errorf("failed to fetch rooms: %w", err)
	}

	s.snapMu.Lock()
	s.rooms = rooms
	s.snapMu.Unlock()
	return nil
}

// Rooms returns a copy of the current snapshot, display order ascending
func (s *RoomSync) Rooms() []entity.Room {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()

	out := make([]entity.Room, len(s.rooms))
	copy(out, s.rooms)
	return out
}
