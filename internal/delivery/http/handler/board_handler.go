package handler

import (
	"net/http"
	"time"

	"hospital-portal/internal/converter"
	"hospital-portal/internal/delivery/dto"
	"hospital-portal/internal/delivery/http/middleware"
	"hospital-portal/internal/sync"
	"hospital-portal/pkg/response"
)

// BoardHandler serves the room map page from the caller's synchronized
// snapshots: the selected sector's rooms, the doctors to assign from
// and the slot allocations for the day in view. Reads never hit the
// store; a failed background refresh leaves the previous snapshot
// visible and marks the payload stale.
type BoardHandler struct {
	manager *sync.Manager
}

func NewBoardHandler(manager *sync.Manager) *BoardHandler {
	return &BoardHandler{manager: manager}
}

func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
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

	if date := r.URL.Query().Get("date"); date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD", nil)
			return
		}
		// A fetch failure here keeps the previous day's snapshot; the
		// stale flag below tells the client.
		_ = session.Allocations().SetDate(r.Context(), date)
	}

	stale := session.Rooms().LastError() != nil ||
		session.Profiles().LastError() != nil ||
		session.Allocations().LastError() != nil

	board := &dto.BoardResponse{
		Sector:      session.Sector().Current(),
		Date:        session.Allocations().Date(),
		Rooms:       converter.RoomsToResponses(session.Rooms().Rooms()),
		Doctors:     converter.ProfilesToResponses(session.Profiles().Doctors()),
		Allocations: converter.AllocationsToResponses(session.Allocations().Allocations()),
		Stale:       stale,
	}

	message := "Board retrieved successfully"
	if stale {
		message = "Board retrieved from stale cache"
	}
	response.Success(w, http.StatusOK, message, board)
}
