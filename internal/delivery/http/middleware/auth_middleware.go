package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"hospital-portal/internal/sector"
	"hospital-portal/internal/usecase"
	"hospital-portal/pkg/jwt"
	"hospital-portal/pkg/response"
)

type contextKey string

const identityKey contextKey = "identity"

// AuthMiddleware verifies tokens minted by the external auth provider
// and resolves the subject into the mirrored profile row. This service
// never issues tokens.
type AuthMiddleware struct {
	verifier *jwt.Verifier
	sessions usecase.SessionUsecase
}

func NewAuthMiddleware(verifier *jwt.Verifier, sessions usecase.SessionUsecase) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		sessions: sessions,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.verifier.VerifyToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			response.Unauthorized(w, "Invalid token subject")
			return
		}

		// A valid token without a profile row means the identity was
		// removed after the token was issued.
		profile, err := m.sessions.ResolveIdentity(r.Context(), userID)
		if err != nil {
			if errors.Is(err, usecase.ErrIdentityNotFound) {
				response.Unauthorized(w, "No profile for this identity")
				return
			}
			response.InternalServerError(w, "Failed to resolve identity")
			return
		}

		identity := sector.Identity{
			ID:      profile.ID,
			Name:    profile.Name,
			Email:   profile.Email,
			Role:    profile.Role,
			IsAdmin: profile.IsAdmin,
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentityFromContext extracts the resolved identity from context
func GetIdentityFromContext(ctx context.Context) (sector.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(sector.Identity)
	return identity, ok
}
