package notify

import "time"

// Op classifies what kind of write produced an event
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Table subjects carried by change events
const (
	TableProfiles    = "profiles"
	TableRooms       = "rooms"
	TableAllocations = "room_allocations"
)

// Event tells subscribers that rows of a table changed. It carries no row
// data beyond hints; consumers always re-fetch their scoped collection,
// so a lost or duplicated event never corrupts state.
type Event struct {
	Table  string    `json:"table"`
	Op     Op        `json:"op"`
	Sector string    `json:"sector,omitempty"`
	RowID  string    `json:"row_id,omitempty"`
	At     time.Time `json:"at"`
}

// Filter restricts what a subscription receives. A zero filter matches
// everything. Events without a sector hint pass every filter; refetching
// on them is harmless.
type Filter struct {
	Sector string
}

// Matches reports whether the event should reach a subscriber holding
// this filter.
func (f Filter) Matches(e Event) bool {
	if f.Sector == "" || e.Sector == "" {
		return true
	}
	return f.Sector == e.Sector
}
