package repository

import (
	"errors"

	"hospital-portal/internal/domain/entity"
	domainRepo "hospital-portal/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type profileRepository struct{}

func NewProfileRepository() domainRepo.ProfileRepository {
	return &profileRepository{}
}

func (r *profileRepository) Create(db *gorm.DB, profile *entity.Profile) error {
	return db.Create(profile).Error
}

func (r *profileRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	err := db.Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindByEmail(db *gorm.DB, email string) (*entity.Profile, error) {
	var profile entity.Profile
	err := db.Where("email = ?", email).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindAll(db *gorm.DB) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := db.Order("name ASC").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) FindByRole(db *gorm.DB, role string) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := db.Where("role = ?", role).Order("name ASC").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) Update(db *gorm.DB, profile *entity.Profile) error {
	return db.Omit("Allocations").Save(profile).Error
}

func (r *profileRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.ProfileStatus) (int64, error) {
	result := db.Model(&entity.Profile{}).Where("id = ?", id).Update("status", status)
	return result.RowsAffected, result.Error
}

func (r *profileRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Profile{})
	return result.RowsAffected, result.Error
}
