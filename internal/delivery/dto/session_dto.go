package dto

// Request DTOs

type SwitchSectorRequest struct {
	Sector string `json:"sector" validate:"required"`
}

// Response DTOs

type SessionResponse struct {
	User    *ProfileResponse `json:"user"`
	Sector  string           `json:"sector"`
	Sectors []string         `json:"sectors"`
}

type SectorResponse struct {
	Sector  string   `json:"sector"`
	Sectors []string `json:"sectors"`
}
