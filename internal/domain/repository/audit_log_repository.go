package repository

import (
	"hospital-portal/internal/domain/entity"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	FindAll(db *gorm.DB, limit, offset int) ([]entity.AuditLog, error)
	Count(db *gorm.DB) (int64, error)
	FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error)
}
