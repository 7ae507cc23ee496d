package sync

import (
	"context"
	"sync/atomic"
	"time"

	"hospital-portal/internal/sector"
)

// Session is one signed-in user's live view of the portal: the sector
// context plus the synchronizers feeding that user's page views.
type Session struct {
	sector      *sector.Context
	profiles    *ProfileSync
	rooms       *RoomSync
	allocations *AllocationSync

	lastSeen atomic.Int64
}

func NewSession(sectorCtx *sector.Context, profiles *ProfileSync, rooms *RoomSync, allocations *AllocationSync) *Session {
	s := &Session{
		sector:      sectorCtx,
		profiles:    profiles,
		rooms:       rooms,
		allocations: allocations,
	}
	s.Touch()
	return s
}

func (s *Session) Sector() *sector.Context {
	return s.sector
}

func (s *Session) Profiles() *ProfileSync {
	return s.profiles
}

func (s *Session) Rooms() *RoomSync {
	return s.rooms
}

func (s *Session) Allocations() *AllocationSync {
	return s.allocations
}

// Start brings all synchronizers up. On partial failure the ones already
// started are stopped again, so a failed session holds no subscriptions.
func (s *Session) Start(ctx context.Context) error {
	if err := s.profiles.Start(ctx); err != nil {
		return err
	}
	if err := s.rooms.Start(ctx); err != nil {
		s.profiles.Stop()
		return err
	}
	if err := s.allocations.Start(ctx); err != nil {
		s.rooms.Stop()
		s.profiles.Stop()
		return err
	}
	return nil
}

func (s *Session) Stop() {
	s.allocations.Stop()
	s.rooms.Stop()
	s.profiles.Stop()
}

// Touch marks the session as recently used
func (s *Session) Touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen reports when the session was last touched
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}
