package repository

import (
	"hospital-portal/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoomRepository interface {
	Create(db *gorm.DB, room *entity.Room) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Room, error)
	FindBySector(db *gorm.DB, sector string) ([]entity.Room, error)
	Update(db *gorm.DB, room *entity.Room) error
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
}
