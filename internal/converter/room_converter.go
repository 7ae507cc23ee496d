package converter

import (
	"hospital-portal/internal/delivery/dto"
	"hospital-portal/internal/domain/entity"
)

// RoomToResponse converts a Room entity to RoomResponse DTO
func RoomToResponse(room *entity.Room) *dto.RoomResponse {
	if room == nil {
		return nil
	}

	return &dto.RoomResponse{
		ID:           room.ID,
		Name:         room.Name,
		Extension:    room.Extension,
		Sector:       room.Sector,
		DisplayOrder: room.DisplayOrder,
		CreatedAt:    room.CreatedAt,
		UpdatedAt:    room.UpdatedAt,
	}
}

// RoomsToResponses converts a slice of Room entities to slice of RoomResponse DTOs
func RoomsToResponses(rooms []entity.Room) []dto.RoomResponse {
	responses := make([]dto.RoomResponse, 0, len(rooms))
	for i := range rooms {
		responses = append(responses, *RoomToResponse(&rooms[i]))
	}
	return responses
}
