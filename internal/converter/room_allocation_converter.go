package converter

import (
	"github.com/google/uuid"

	"hospital-portal/internal/delivery/dto"
	"hospital-portal/internal/domain/entity"
)

// AllocationToResponse converts a RoomAllocation entity to AllocationResponse DTO
func AllocationToResponse(allocation *entity.RoomAllocation) *dto.AllocationResponse {
	if allocation == nil {
		return nil
	}

	resp := &dto.AllocationResponse{
		ID:        allocation.ID,
		RoomID:    allocation.RoomID,
		DoctorID:  allocation.DoctorID,
		Date:      allocation.DateKey(),
		Shift:     string(allocation.Shift),
		CreatedBy: allocation.CreatedBy,
		CreatedAt: allocation.CreatedAt,
		UpdatedAt: allocation.UpdatedAt,
	}

	if allocation.Room.ID != uuid.Nil {
		resp.Room = RoomToResponse(&allocation.Room)
	}
	if allocation.Doctor.ID != uuid.Nil {
		resp.Doctor = ProfileToResponse(&allocation.Doctor)
	}

	return resp
}

// AllocationsToResponses converts a slice of RoomAllocation entities to slice of AllocationResponse DTOs
func AllocationsToResponses(allocations []entity.RoomAllocation) []dto.AllocationResponse {
	responses := make([]dto.AllocationResponse, 0, len(allocations))
	for i := range allocations {
		responses = append(responses, *AllocationToResponse(&allocations[i]))
	}
	return responses
}
