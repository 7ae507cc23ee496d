package entity

// AllocationFilter is a domain-level filter for querying the allocation map.
// Used by repository layer to avoid coupling with delivery DTOs.
type AllocationFilter struct {
	Date   string // Format: YYYY-MM-DD
	Sector string // Restricts to rooms of this sector when set
}
