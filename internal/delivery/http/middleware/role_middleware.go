package middleware

import (
	"net/http"

	"hospital-portal/internal/domain/entity"
	"hospital-portal/pkg/response"
)

// RequireAdmin gates routes reserved for administrators
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentityFromContext(r.Context())
		if !ok {
			response.Unauthorized(w, "Identity information not found")
			return
		}

		if !identity.IsAdmin {
			response.Forbidden(w, "Administrator access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireStaff gates routes for non-doctor staff. Room management is a
// reception task; administrators pass regardless of role.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentityFromContext(r.Context())
		if !ok {
			response.Unauthorized(w, "Identity information not found")
			return
		}

		if identity.Role == entity.RoleDoctor && !identity.IsAdmin {
			response.Forbidden(w, "Staff access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
