package entity

// Role constants. Roles live on the profile row; the auth provider
// knows nothing about them.
const (
	RoleDoctor    = "doctor"
	RoleReception = "reception"
)

// IsValidRole checks a role against the known set
func IsValidRole(role string) bool {
	return role == RoleDoctor || role == RoleReception
}
