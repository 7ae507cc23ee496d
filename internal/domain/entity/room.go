package entity

import (
	"time"

	"github.com/google/uuid"
)

// Room represents a consultation room inside a sector
type Room struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Extension    string    `gorm:"type:varchar(20)" json:"extension"`
	Sector       string    `gorm:"type:varchar(255);not null;index" json:"sector"`
	DisplayOrder int       `gorm:"not null;default:0;index" json:"display_order"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Allocations []RoomAllocation `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"allocations,omitempty"`
}

func (Room) TableName() string {
	return "rooms"
}
