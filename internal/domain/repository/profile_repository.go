package repository

import (
	"hospital-portal/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(db *gorm.DB, profile *entity.Profile) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Profile, error)
	FindByEmail(db *gorm.DB, email string) (*entity.Profile, error)
	FindAll(db *gorm.DB) ([]entity.Profile, error)
	FindByRole(db *gorm.DB, role string) ([]entity.Profile, error)
	Update(db *gorm.DB, profile *entity.Profile) error
	UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.ProfileStatus) (int64, error)
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
}
