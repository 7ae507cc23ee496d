package repository

import (
	"errors"

	"hospital-portal/internal/domain/entity"
	domainRepo "hospital-portal/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type roomAllocationRepository struct{}

func NewRoomAllocationRepository() domainRepo.RoomAllocationRepository {
	return &roomAllocationRepository{}
}

// Upsert inserts the allocation or, when the (room_id, date, shift) slot
// is already taken, overwrites the existing row. Last write wins.
func (r *roomAllocationRepository) Upsert(db *gorm.DB, allocation *entity.RoomAllocation) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "date"}, {Name: "shift"}},
		DoUpdates: clause.AssignmentColumns([]string{"doctor_id", "created_by", "updated_at"}),
	}).Create(allocation).Error
}

func (r *roomAllocationRepository) FindByFilter(db *gorm.DB, filter *entity.AllocationFilter) ([]entity.RoomAllocation, error) {
	var allocations []entity.RoomAllocation
	query := db.Preload("Room").Preload("Doctor")

	if filter != nil {
		if filter.Date != "" {
			query = query.Where("room_allocations.date = ?", filter.Date)
		}
		if filter.Sector != "" {
			query = query.
				Joins("JOIN rooms ON rooms.id = room_allocations.room_id").
				Where("rooms.sector = ?", filter.Sector)
		}
	}

	err := query.Order("room_allocations.date ASC, room_allocations.shift ASC").Find(&allocations).Error
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

func (r *roomAllocationRepository) FindBySlot(db *gorm.DB, roomID uuid.UUID, date string, shift entity.Shift) (*entity.RoomAllocation, error) {
	var allocation entity.RoomAllocation
	err := db.Preload("Doctor").
		Where("room_id = ? AND date = ? AND shift = ?", roomID, date, shift).
		First(&allocation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &allocation, nil
}

func (r *roomAllocationRepository) DeleteBySlot(db *gorm.DB, roomID uuid.UUID, date string, shift entity.Shift) (int64, error) {
	result := db.Where("room_id = ? AND date = ? AND shift = ?", roomID, date, shift).Delete(&entity.RoomAllocation{})
	return result.RowsAffected, result.Error
}
