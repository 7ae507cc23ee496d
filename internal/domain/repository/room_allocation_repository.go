package repository

import (
	"hospital-portal/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoomAllocationRepository interface {
	// Upsert writes the allocation, replacing any existing row for the
	// same (room_id, date, shift).
	Upsert(db *gorm.DB, allocation *entity.RoomAllocation) error
	FindByFilter(db *gorm.DB, filter *entity.AllocationFilter) ([]entity.RoomAllocation, error)
	FindBySlot(db *gorm.DB, roomID uuid.UUID, date string, shift entity.Shift) (*entity.RoomAllocation, error)
	DeleteBySlot(db *gorm.DB, roomID uuid.UUID, date string, shift entity.Shift) (int64, error)
}
