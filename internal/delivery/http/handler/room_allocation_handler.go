package handler

import (
	"encoding/json"
	"net/http"

	"hospital-portal/internal/delivery/dto"
	"hospital-portal/internal/delivery/http/middleware"
	"hospital-portal/internal/sync"
	"hospital-portal/internal/usecase"
	"hospital-portal/pkg/response"
	"hospital-portal/pkg/validator"
)

type AllocationHandler struct {
	allocationUsecase usecase.RoomAllocationUsecase
	manager           *sync.Manager
	validator         *validator.CustomValidator
}

func NewAllocationHandler(allocationUsecase usecase.RoomAllocationUsecase, manager *sync.Manager, validator *validator.CustomValidator) *AllocationHandler {
	return &AllocationHandler{
		allocationUsecase: allocationUsecase,
		manager:           manager,
		validator:         validator,
	}
}

// refreshAllocations proactively refetches the caller's slot map after
// a write, so the writer's own views close immediately instead of
// waiting for the change notification.
func (h *AllocationHandler) refreshAllocations(r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		return
	}
	if session, ok := h.manager.Get(identity.ID); ok {
		_ = session.Allocations().Refresh(r.Context())
	}
}

// GetAllocations lists a day's allocations for a sector. Sector falls
// back to the caller's selection, date to today on the usecase side.
func (h *AllocationHandler) GetAllocations(w http.ResponseWriter, r *http.Request) {
	sector := r.URL.Query().Get("sector")
	if sector == "" {
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
		sector = session.Sector().Current()
	}

	allocations, err := h.allocationUsecase.GetAllocations(r.Context(), sector, r.URL.Query().Get("date"))
	if err != nil {
		switch err {
		case usecase.ErrInvalidSector:
			response.Error(w, http.StatusBadRequest, "Invalid sector", nil)
		case usecase.ErrInvalidDateFormat:
			response.Error(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD", nil)
		default:
			response.InternalServerError(w, "Failed to get allocations")
		}
		return
	}

	response.Success(w, http.StatusOK, "Allocations retrieved successfully", allocations)
}

// Assign books a doctor into a room slot. Assigning an occupied slot
// overwrites the previous doctor; the superseded client converges on
// its next notification-triggered refresh.
func (h *AllocationHandler) Assign(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Identity information not found")
		return
	}

	var req dto.AssignAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	allocation, err := h.allocationUsecase.AssignDoctor(r.Context(), identity.ID, &req)
	if err != nil {
		switch err {
		case usecase.ErrRoomNotFound:
			response.NotFound(w, "Room not found")
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		case usecase.ErrNotADoctor:
			response.Error(w, http.StatusBadRequest, "Profile is not a doctor", nil)
		case usecase.ErrInvalidShift:
			response.Error(w, http.StatusBadRequest, "Invalid shift, use morning or afternoon", nil)
		case usecase.ErrInvalidDateFormat:
			response.Error(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD", nil)
		default:
			response.InternalServerError(w, "Failed to assign doctor")
		}
		return
	}

	h.refreshAllocations(r)

	response.Success(w, http.StatusOK, "Doctor assigned successfully", allocation)
}

// Clear empties a room slot. Clearing an already empty slot succeeds.
func (h *AllocationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Identity information not found")
		return
	}

	var req dto.ClearAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	err := h.allocationUsecase.ClearSlot(r.Context(), identity.ID, &req)
	if err != nil {
		switch err {
		case usecase.ErrRoomNotFound:
			response.NotFound(w, "Room not found")
		case usecase.ErrInvalidShift:
			response.Error(w, http.StatusBadRequest, "Invalid shift, use morning or afternoon", nil)
		case usecase.ErrInvalidDateFormat:
			response.Error(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD", nil)
		default:
			response.InternalServerError(w, "Failed to clear slot")
		}
		return
	}

	h.refreshAllocations(r)

	response.Success(w, http.StatusOK, "Slot cleared successfully", nil)
}
