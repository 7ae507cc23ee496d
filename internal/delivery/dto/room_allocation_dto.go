package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type AssignAllocationRequest struct {
	RoomID   uuid.UUID `json:"room_id" validate:"required"`
	DoctorID uuid.UUID `json:"doctor_id" validate:"required"`
	Date     string    `json:"date" validate:"required"` // Format: YYYY-MM-DD
	Shift    string    `json:"shift" validate:"required,oneof=morning afternoon"`
}

type ClearAllocationRequest struct {
	RoomID uuid.UUID `json:"room_id" validate:"required"`
	Date   string    `json:"date" validate:"required"` // Format: YYYY-MM-DD
	Shift  string    `json:"shift" validate:"required,oneof=morning afternoon"`
}

// Response DTOs

type AllocationResponse struct {
	ID        uuid.UUID        `json:"id"`
	RoomID    uuid.UUID        `json:"room_id"`
	Room      *RoomResponse    `json:"room,omitempty"`
	DoctorID  uuid.UUID        `json:"doctor_id"`
	Doctor    *ProfileResponse `json:"doctor,omitempty"`
	Date      string           `json:"date"` // Format: YYYY-MM-DD
	Shift     string           `json:"shift"`
	CreatedBy *uuid.UUID       `json:"created_by,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type AllocationListResponse struct {
	Allocations []AllocationResponse `json:"allocations"`
	Date        string               `json:"date,omitempty"`
	Total       int                  `json:"total"`
}
