package http

import (
	"net/http"

	"hospital-portal/internal/delivery/http/handler"
	"hospital-portal/internal/delivery/http/middleware"
	"hospital-portal/internal/delivery/ws"

	"github.com/gorilla/mux"
)

type Router struct {
	router            *mux.Router
	sessionHandler    *handler.SessionHandler
	profileHandler    *handler.ProfileHandler
	roomHandler       *handler.RoomHandler
	allocationHandler *handler.AllocationHandler
	boardHandler      *handler.BoardHandler
	auditLogHandler   *handler.AuditLogHandler
	hub               *ws.Hub
	authMiddleware    *middleware.AuthMiddleware
	corsMiddleware    *middleware.CORSMiddleware
}

func NewRouter(
	sessionHandler *handler.SessionHandler,
	profileHandler *handler.ProfileHandler,
	roomHandler *handler.RoomHandler,
	allocationHandler *handler.AllocationHandler,
	boardHandler *handler.BoardHandler,
	auditLogHandler *handler.AuditLogHandler,
	hub *ws.Hub,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:            mux.NewRouter(),
		sessionHandler:    sessionHandler,
		profileHandler:    profileHandler,
		roomHandler:       roomHandler,
		allocationHandler: allocationHandler,
		boardHandler:      boardHandler,
		auditLogHandler:   auditLogHandler,
		hub:               hub,
		authMiddleware:    authMiddleware,
		corsMiddleware:    corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Change feed (token rides the query string, verified by the hub)
	r.router.HandleFunc("/ws", r.hub.HandleWS).Methods(http.MethodGet)

	// Session routes
	session := api.PathPrefix("/session").Subrouter()
	session.Use(r.authMiddleware.Authenticate)
	session.HandleFunc("", r.sessionHandler.GetSession).Methods(http.MethodGet)
	session.HandleFunc("/sector", r.sessionHandler.GetSector).Methods(http.MethodGet)
	session.HandleFunc("/sector", r.sessionHandler.SwitchSector).Methods(http.MethodPut)

	// Staff directory
	profiles := api.PathPrefix("/profiles").Subrouter()
	profiles.Use(r.authMiddleware.Authenticate)
	profiles.HandleFunc("", r.profileHandler.GetAllProfiles).Methods(http.MethodGet)
	profiles.HandleFunc("/me/status", r.profileHandler.UpdateOwnStatus).Methods(http.MethodPut)
	profiles.HandleFunc("/{id}", r.profileHandler.GetProfile).Methods(http.MethodGet)

	doctors := api.PathPrefix("/doctors").Subrouter()
	doctors.Use(r.authMiddleware.Authenticate)
	doctors.HandleFunc("", r.profileHandler.GetDoctors).Methods(http.MethodGet)

	// Rooms: reads for everyone, management for non-doctor staff
	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.Use(r.authMiddleware.Authenticate)
	rooms.HandleFunc("", r.roomHandler.GetRooms).Methods(http.MethodGet)
	rooms.HandleFunc("/{id}", r.roomHandler.GetRoom).Methods(http.MethodGet)
	rooms.Handle("", middleware.RequireStaff(http.HandlerFunc(r.roomHandler.CreateRoom))).Methods(http.MethodPost)
	rooms.Handle("/{id}", middleware.RequireStaff(http.HandlerFunc(r.roomHandler.UpdateRoom))).Methods(http.MethodPut)
	rooms.Handle("/{id}", middleware.RequireStaff(http.HandlerFunc(r.roomHandler.DeleteRoom))).Methods(http.MethodDelete)

	// Room map
	allocations := api.PathPrefix("/allocations").Subrouter()
	allocations.Use(r.authMiddleware.Authenticate)
	allocations.HandleFunc("", r.allocationHandler.GetAllocations).Methods(http.MethodGet)
	allocations.HandleFunc("", r.allocationHandler.Assign).Methods(http.MethodPut)
	allocations.HandleFunc("", r.allocationHandler.Clear).Methods(http.MethodDelete)

	board := api.PathPrefix("/board").Subrouter()
	board.Use(r.authMiddleware.Authenticate)
	board.HandleFunc("", r.boardHandler.GetBoard).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	// Staff management (admin)
	admin.HandleFunc("/profiles", r.profileHandler.CreateProfile).Methods(http.MethodPost)
	admin.HandleFunc("/profiles/{id}", r.profileHandler.UpdateProfile).Methods(http.MethodPut)
	admin.HandleFunc("/profiles/{id}", r.profileHandler.DeleteProfile).Methods(http.MethodDelete)

	// Audit trail (admin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
