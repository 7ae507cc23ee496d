package dto

import (
	"time"

	"hospital-portal/internal/domain/entity"
)

// Response DTOs

type AuditLogResponse struct {
	ID        int64            `json:"id"`
	User      *ProfileResponse `json:"user,omitempty"`
	Action    string           `json:"action"`
	Metadata  entity.JSON      `json:"metadata"`
	CreatedAt time.Time        `json:"created_at"`
}
