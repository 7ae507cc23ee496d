package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateProfileRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=255"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,oneof=doctor reception"`
	Specialty string `json:"specialty" validate:"omitempty,max=255"`
	Sector    string `json:"sector" validate:"omitempty,max=255"`
	Phone     string `json:"phone" validate:"omitempty,max=50"`
	Gender    string `json:"gender" validate:"omitempty,oneof=male female"`
	Status    string `json:"status" validate:"omitempty,oneof=active inactive vacation online offline"`
	IsAdmin   bool   `json:"is_admin"`
}

type UpdateProfileRequest struct {
	Name      string `json:"name" validate:"omitempty,min=2,max=255"`
	Role      string `json:"role" validate:"omitempty,oneof=doctor reception"`
	Specialty string `json:"specialty" validate:"omitempty,max=255"`
	Sector    string `json:"sector" validate:"omitempty,max=255"`
	Phone     string `json:"phone" validate:"omitempty,max=50"`
	Avatar    string `json:"avatar" validate:"omitempty"`
	Gender    string `json:"gender" validate:"omitempty,oneof=male female"`
	Status    string `json:"status" validate:"omitempty,oneof=active inactive vacation online offline"`
	IsAdmin   *bool  `json:"is_admin" validate:"omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive vacation online offline"`
}

// Response DTOs

type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Specialty string    `json:"specialty"`
	Sector    string    `json:"sector"`
	Phone     string    `json:"phone"`
	Avatar    string    `json:"avatar,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	Status    string    `json:"status"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProfileListResponse struct {
	Profiles []ProfileResponse `json:"profiles"`
	Total    int               `json:"total"`
}
