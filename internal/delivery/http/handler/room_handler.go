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

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type RoomHandler struct {
	roomUsecase usecase.RoomUsecase
	manager     *sync.Manager
	validator   *validator.CustomValidator
}

func NewRoomHandler(roomUsecase usecase.RoomUsecase, manager *sync.Manager, validator *validator.CustomValidator) *RoomHandler {
	return &RoomHandler{
		roomUsecase: roomUsecase,
		manager:     manager,
		validator:   validator,
	}
}

// currentSector resolves the sector a request is scoped to: the query
// parameter when given, otherwise the caller's selected sector.
func (h *RoomHandler) currentSector(r *http.Request) (string, error) {
	if s := r.URL.Query().Get("sector"); s != "" {
		return s, nil
	}

	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		return "", usecase.ErrInvalidSector
	}

	session, err := h.manager.Acquire(r.Context(), identity)
	if err != nil {
		return "", err
	}
	return session.Sector().Current(), nil
}

// refreshRooms proactively refetches the caller's room snapshot after a
// write. The published notification remains the backstop for everyone
// else, so a failed refresh here is only logged via LastError.
func (h *RoomHandler) refreshRooms(r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		return
	}
	if session, ok := h.manager.Get(identity.ID); ok {
		_ = session.Rooms().Refresh(r.Context())
	}
}

// CreateRoom adds a room to the caller's currently selected sector
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Identity information not found")
		return
	}

	var req dto.CreateRoomRequest
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

	room, err := h.roomUsecase.CreateRoom(r.Context(), identity.ID, session.Sector().Current(), &req)
	if err != nil {
		if err == usecase.ErrInvalidSector {
			response.Error(w, http.StatusBadRequest, "Invalid sector", nil)
			return
		}
		response.InternalServerError(w, "Failed to create room")
		return
	}

	h.refreshRooms(r)

	response.Success(w, http.StatusCreated, "Room created successfully", room)
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid room ID", nil)
		return
	}

	room, err := h.roomUsecase.GetRoom(r.Context(), roomID)
	if err != nil {
		if err == usecase.ErrRoomNotFound {
			response.NotFound(w, "Room not found")
			return
		}
		response.InternalServerError(w, "Failed to get room")
		return
	}

	response.Success(w, http.StatusOK, "Room retrieved successfully", room)
}

// GetRooms lists the rooms of one sector in display order
func (h *RoomHandler) GetRooms(w http.ResponseWriter, r *http.Request) {
	sector, err := h.currentSector(r)
	if err != nil {
		response.InternalServerError(w, "Failed to resolve sector")
		return
	}

	rooms, err := h.roomUsecase.GetRoomsBySector(r.Context(), sector)
	if err != nil {
		if err == usecase.ErrInvalidSector {
			response.Error(w, http.StatusBadRequest, "Invalid sector", nil)
			return
		}
		response.InternalServerError(w, "Failed to get rooms")
		return
	}

	response.Success(w, http.StatusOK, "Rooms retrieved successfully", rooms)
}

func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Identity information not found")
		return
	}

	vars := mux.Vars(r)
	roomID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid room ID", nil)
		return
	}

	var req dto.UpdateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	room, err := h.roomUsecase.UpdateRoom(r.Context(), identity.ID, roomID, &req)
	if err != nil {
		if err == usecase.ErrRoomNotFound {
			response.NotFound(w, "Room not found")
			return
		}
		response.InternalServerError(w, "Failed to update room")
		return
	}

	h.refreshRooms(r)

	response.Success(w, http.StatusOK, "Room updated successfully", room)
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Identity information not found")
		return
	}

	vars := mux.Vars(r)
	roomID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid room ID", nil)
		return
	}

	err = h.roomUsecase.DeleteRoom(r.Context(), identity.ID, roomID)
	if err != nil {
		if err == usecase.ErrRoomNotFound {
			response.NotFound(w, "Room not found")
			return
		}
		response.InternalServerError(w, "Failed to delete room")
		return
	}

	h.refreshRooms(r)

	response.Success(w, http.StatusOK, "Room deleted successfully", nil)
}
