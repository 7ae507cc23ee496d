package converter

import (
	"hospital-portal/internal/delivery/dto"
	"hospital-portal/internal/domain/entity"
)

// ProfileToResponse converts a Profile entity to ProfileResponse DTO.
// Legacy rows encode the sector inside specialty as "Specialty | Sector";
// those are split here so the response always carries both fields.
func ProfileToResponse(profile *entity.Profile) *dto.ProfileResponse {
	if profile == nil {
		return nil
	}

	specialty, sector := profile.Specialty, profile.Sector
	if sector == "" {
		specialty, sector = entity.SplitSpecialtySector(profile.Specialty)
	}

	status := profile.Status
	if status == "" {
		status = entity.DefaultStatus(profile.Role)
	}

	return &dto.ProfileResponse{
		ID:        profile.ID,
		Name:      profile.Name,
		Email:     profile.Email,
		Role:      profile.Role,
		Specialty: specialty,
		Sector:    sector,
		Phone:     profile.Phone,
		Avatar:    profile.Avatar,
		Gender:    profile.Gender,
		Status:    string(status),
		IsAdmin:   profile.IsAdmin,
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
}

// ProfilesToResponses converts a slice of Profile entities to slice of ProfileResponse DTOs
func ProfilesToResponses(profiles []entity.Profile) []dto.ProfileResponse {
	responses := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		responses = append(responses, *ProfileToResponse(&profiles[i]))
	}
	return responses
}
