package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/adolfofidel/afdevs-admin/internal/auth"
	"github.com/adolfofidel/afdevs-admin/internal/contextkeys"
	"github.com/adolfofidel/afdevs-admin/internal/handler"
)

// Auth creates a JWT authentication middleware backed by the identity
// provider's JWKS.
func Auth(provider *auth.Provider) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "no token provided"})
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization header"})
				return
			}

			identity, err := provider.ValidateToken(r.Context(), parts[1])
			if err != nil {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
				return
			}

			// Store user info in context using typed keys
			ctx := context.WithValue(r.Context(), contextkeys.UserID, identity.UserID)
			ctx = context.WithValue(ctx, contextkeys.UserEmail, identity.Email)
			ctx = context.WithValue(ctx, contextkeys.UserRole, identity.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
