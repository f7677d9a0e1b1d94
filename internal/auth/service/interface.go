// Package service provides technical services for session token operations.
//
// This package implements signed access token issuance and validation, opaque
// refresh token generation, the jti revocation registry, and the role-claims
// cache used to enrich authenticated requests.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/allisson/sessions/internal/identity/domain"
)

// AccessToken is the validated content of a signed access token.
type AccessToken struct {
	Email     string    // sub claim
	UserID    uuid.UUID // userid claim
	Role      string    // role claim
	Claims    []string  // permission claims, one payload entry each
	JTI       uuid.UUID // jti claim
	ExpiresAt time.Time // exp claim
}

// JWTService issues and validates signed access tokens. Implementations must
// pin the signing algorithm and reject tokens signed with anything else,
// including tokens that merely claim a different algorithm in their header.
type JWTService interface {
	// Issue signs a new access token for the given subject. Each permission
	// string rides in the payload as its own claim with value "true", so a
	// consumer can authorize from the token alone. Returns the compact token
	// and the jti embedded in it.
	Issue(email string, userID uuid.UUID, role string, permissions []string) (token string, jti uuid.UUID, err error)

	// Parse validates a token in full: signature, algorithm, issuer,
	// audience, and lifetime. Returns ErrInvalidToken on any failure.
	Parse(tokenString string) (*AccessToken, error)

	// ParseExpired validates everything Parse does except the lifetime.
	// Used on the refresh path, where the access token is expected to have
	// expired but must still prove it belongs to this issuer.
	ParseExpired(tokenString string) (*AccessToken, error)
}

// RefreshTokenService generates opaque refresh token values.
type RefreshTokenService interface {
	// GenerateToken creates a new cryptographically secure random token.
	// The value is URL-safe and never derivable from the access token.
	GenerateToken() (string, error)
}

// RevocationService is the registry of access token jtis cut off before
// their natural expiry. Entries live at most as long as an access token,
// after which the exp claim makes them unusable anyway.
type RevocationService interface {
	// Revoke registers a jti with the reason it was cut off. Registering
	// the same jti again is an idempotent upsert.
	Revoke(ctx context.Context, jti uuid.UUID, reason string) error

	// IsRevoked reports whether the jti is in the registry, along with the
	// reason it was registered with. The reason is empty when not revoked.
	IsRevoked(ctx context.Context, jti uuid.UUID) (reason string, revoked bool, err error)
}

// RoleClaimsService resolves the claim values attached to a role, caching
// results so the authentication hot path avoids a database round trip.
type RoleClaimsService interface {
	// GetClaims returns the claim values for the role, from cache when warm.
	GetClaims(ctx context.Context, role identityDomain.RoleType) ([]string, error)

	// Invalidate drops the cached claims for the given roles. Missing cache
	// entries are ignored.
	Invalidate(ctx context.Context, roles ...identityDomain.RoleType) error
}
