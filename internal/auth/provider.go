// Package auth validates tokens issued by the external identity provider.
// Users (staff and portal clients alike) are managed at the provider; this
// service only verifies signatures via the provider's JWKS endpoint and
// extracts the claims the rest of the code cares about.
package auth

import (
	"context"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/adolfofidel/afdevs-admin/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated subject extracted from a verified token.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// Provider validates identity-provider JWTs using a cached JWKS.
type Provider struct {
	issuer string
	jwks   keyfunc.Keyfunc
}

// NewProvider fetches the issuer's JWKS and keeps it refreshed in the
// background.
func NewProvider(issuer string) (*Provider, error) {
	if issuer == "" {
		return nil, fmt.Errorf("auth issuer URL is required")
	}

	jwksURL := issuer + "/.well-known/jwks.json"
	jwks, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("fetch JWKS from %s: %w", jwksURL, err)
	}

	return &Provider{issuer: issuer, jwks: jwks}, nil
}

// ValidateToken parses and verifies a JWT and returns the caller's identity.
func (p *Provider) ValidateToken(ctx context.Context, tokenStr string) (*Identity, error) {
	token, err := jwt.Parse(tokenStr, p.jwks.KeyfuncCtx(ctx),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, domain.ErrUnauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized("invalid or expired token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, domain.ErrUnauthorized("token has no subject")
	}

	email, _ := claims["email"].(string)

	// Staff accounts carry org:admin at the provider; everyone else is a
	// portal client.
	role := "client"
	if orgRole, _ := claims["org_role"].(string); orgRole == "org:admin" {
		role = "admin"
	}

	return &Identity{UserID: sub, Email: email, Role: role}, nil
}
