package entity

import (
	"time"

	"github.com/google/uuid"
)

// Shift represents the half-day period of an allocation
type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
)

// IsValid checks the shift against the known set
func (s Shift) IsValid() bool {
	return s == ShiftMorning || s == ShiftAfternoon
}

// RoomAllocation assigns a doctor to a room for one date and shift.
// One allocation per (room, date, shift); writes go through an upsert
// on that key, so the latest assignment wins.
type RoomAllocation struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RoomID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_room_allocations_slot" json:"room_id"`
	Date      time.Time  `gorm:"type:date;not null;uniqueIndex:ux_room_allocations_slot" json:"date"`
	Shift     Shift      `gorm:"type:varchar(20);not null;uniqueIndex:ux_room_allocations_slot" json:"shift"`
	DoctorID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"doctor_id"`
	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Room   Room    `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Doctor Profile `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (RoomAllocation) TableName() string {
	return "room_allocations"
}

// DateKey formats the allocation date the way the API exchanges it
func (a *RoomAllocation) DateKey() string {
	return a.Date.Format("2006-01-02")
}
