package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProfileStatus represents the availability status of a staff member
type ProfileStatus string

const (
	StatusActive   ProfileStatus = "active"
	StatusInactive ProfileStatus = "inactive"
	StatusVacation ProfileStatus = "vacation"
	StatusOnline   ProfileStatus = "online"
	StatusOffline  ProfileStatus = "offline"
)

// IsValid checks the status against the known set
func (s ProfileStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusVacation, StatusOnline, StatusOffline:
		return true
	}
	return false
}

// Profile represents a staff member of the facility.
// The ID is issued by the external auth provider, not generated here.
type Profile struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string        `gorm:"type:varchar(255);not null" json:"name"`
	Email     string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role      string        `gorm:"type:varchar(50);not null;index" json:"role"`
	Specialty string        `gorm:"type:varchar(255)" json:"specialty"`
	Sector    string        `gorm:"type:varchar(255);index" json:"sector"`
	Phone     string        `gorm:"type:varchar(50)" json:"phone"`
	Avatar    string        `gorm:"type:text" json:"avatar,omitempty"`
	Gender    string        `gorm:"type:varchar(20)" json:"gender,omitempty"`
	Status    ProfileStatus `gorm:"type:varchar(20);not null;default:'offline';index" json:"status"`
	IsAdmin   bool          `gorm:"not null;default:false;index" json:"is_admin"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Allocations []RoomAllocation `gorm:"foreignKey:DoctorID" json:"allocations,omitempty"`
}

func (Profile) TableName() string {
	return "profiles"
}

// IsDoctor checks if the profile belongs to a physician
func (p *Profile) IsDoctor() bool {
	return p.Role == RoleDoctor
}

// DefaultStatus returns the status assumed when a row carries none
func DefaultStatus(role string) ProfileStatus {
	if role == RoleDoctor {
		return StatusActive
	}
	return StatusOffline
}

// legacySeparator joins specialty and sector in rows written before the
// columns were split. Kept for imports and for rows the backfill missed.
const legacySeparator = " | "

// SplitSpecialtySector decodes the legacy "specialty | sector" encoding.
// Only the first separator splits; the sector part may contain further
// pipes inside parenthesized labels.
func SplitSpecialtySector(value string) (specialty, sector string) {
	idx := strings.Index(value, legacySeparator)
	if idx < 0 {
		return value, ""
	}
	return value[:idx], value[idx+len(legacySeparator):]
}
