package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateRoomRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=255"`
	Extension    string `json:"extension" validate:"omitempty,max=20"`
	DisplayOrder int    `json:"display_order" validate:"omitempty,min=0"`
}

type UpdateRoomRequest struct {
	Name         string  `json:"name" validate:"omitempty,min=1,max=255"`
	Extension    *string `json:"extension" validate:"omitempty,max=20"`
	DisplayOrder *int    `json:"display_order" validate:"omitempty,min=0"`
}

// Response DTOs

type RoomResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Extension    string    `json:"extension,omitempty"`
	Sector       string    `json:"sector"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
	Total int            `json:"total"`
}
