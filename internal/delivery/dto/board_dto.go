package dto

// Response DTOs

// BoardResponse is the room map page payload: the selected sector's
// rooms, the assignable doctors and the day's allocations, served from
// the session's synchronized snapshots. Stale flags that the latest
// refresh failed and the data may lag the store.
type BoardResponse struct {
	Sector      string               `json:"sector"`
	Date        string               `json:"date"`
	Rooms       []RoomResponse       `json:"rooms"`
	Doctors     []ProfileResponse    `json:"doctors"`
	Allocations []AllocationResponse `json:"allocations"`
	Stale       bool                 `json:"stale,omitempty"`
}
