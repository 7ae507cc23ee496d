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

// ProfileSync keeps the physician directory the allocation map assigns
// from. The collection is role-scoped, not sector-scoped, so sector
// switches only cost it a refetch.
type ProfileSync struct {
	synchronizer
	db   *gorm.DB
	repo repository.ProfileRepository

	snapMu  stdsync.RWMutex
	doctors []entity.Profile
}

func NewProfileSync(
	db *gorm.DB,
	repo repository.ProfileRepository,
	channel notify.Channel,
	sectorCtx *sector.Context,
	log *logrus.Logger,
) *ProfileSync {
	s := &ProfileSync{
		db:   db,
		repo: repo,
	}
	s.synchronizer = synchronizer{
		name:    "profiles",
		tables:  []string{notify.TableProfiles},
		channel: channel,
		sector:  sectorCtx,
		log:     log,
		fetch:   s.load,
	}
	return s
}

func (s *ProfileSync) load(ctx context.Context) error {
	doctors, err := s.repo.FindByRole(s.db.WithContext(ctx), entity.RoleDoctor)
	if err != nil {
		return fmt.Errorf("failed to fetch doctors: %w", err)
	}

	s.snapMu.Lock()
	s.doctors = doctors
	s.snapMu.Unlock()
	return nil
}

// Doctors returns a copy of the current snapshot
func (s *ProfileSync) Doctors() []entity.Profile {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()

	out := make([]entity.Profile, len(s.doctors))
	copy(out, s.doctors)
	return out
}
