package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"hospital-portal/internal/delivery/dto"
	"hospital-portal/internal/delivery/http/middleware"
	"hospital-portal/internal/domain/entity"
	"hospital-portal/internal/sector"
	"hospital-portal/internal/sync"
	"hospital-portal/internal/usecase"
	"hospital-portal/pkg/response"
	"hospital-portal/pkg/validator"
)

type SessionHandler struct {
	sessionUsecase usecase.SessionUsecase
	manager        *sync.Manager
	validator      *validator.CustomValidator
}

func NewSessionHandler(sessionUsecase usecase.SessionUsecase, manager *sync.Manager, validator *validator.CustomValidator) *SessionHandler {
	return &SessionHandler{
		sessionUsecase: sessionUsecase,
		manager:        manager,
		validator:      validator,
	}
}

// GetSession opens (or touches) the caller's sync session and returns
// who they are, the selected sector and the sector set.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Identity information not found")
		return
	}

	session, err := h.manager.Acquire(r.Context(), identity)
	if err != nil {
		response.InternalServerError(w, "Failed to open sync session")
		return
	}

	result, err := h.sessionUsecase.BuildSession(r.Context(), identity.ID, session.Sector().Current())
	if err != nil {
		if errors.Is(err, usecase.ErrIdentityNotFound) {
			response.Unauthorized(w, "No profile for this identity")
			return
		}
		response.InternalServerError(w, "Failed to build session")
		return
	}

	response.Success(w, http.StatusOK, "Session retrieved successfully", result)
}

func (h *SessionHandler) GetSector(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Identity information not found")
		return
	}

	session, err := h.manager.Acquire(r.Context(), identity)
	if err != nil {
		response.InternalServerError(w, "Failed to open sync session")
		return
	}

	response.Success(w, http.StatusOK, "Sector retrieved successfully", &dto.SectorResponse{
		Sector:  session.Sector().Current(),
		Sectors: entity.Sectors,
	})
}

// SwitchSector selects another sector for the caller's session. The
// switch re-scopes every synchronizer and persists across sessions.
func (h *SessionHandler) SwitchSector(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Identity information not found")
		return
	}

	var req dto.SwitchSectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	session, err := h.manager.Acquire(r.Context(), identity)
	if err != nil {
		response.InternalServerError(w, "Failed to open sync session")
		return
	}

	if err := session.Sector().Switch(r.Context(), req.Sector); err != nil {
		if errors.Is(err, sector.ErrUnknownSector) {
			response.Error(w, http.StatusBadRequest, "Unknown sector", nil)
			return
		}
		response.InternalServerError(w, "Failed to switch sector")
		return
	}

	response.Success(w, http.StatusOK, "Sector switched successfully", &dto.SectorResponse{
		Sector:  session.Sector().Current(),
		Sectors: entity.Sectors,
	})
}
