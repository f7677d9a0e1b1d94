// Package domain defines the session token models and business rules.
//
// Access tokens are short-lived signed JWTs; refresh tokens are opaque,
// single-use, server-side records chained to the access token they were
// issued with via the jti claim. Revocation is soft: refresh tokens are
// flagged invalidated, never deleted, so replay attempts stay detectable.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken represents a single-use opaque token that can mint a new
// token pair. The opaque value is the primary key; it is generated from
// crypto/rand and never derivable from the access token.
type RefreshToken struct {
	Token       string    // Opaque token value, primary key
	JTI         uuid.UUID // jti claim of the access token issued alongside
	UserID      uuid.UUID // Owning user (profile) ID
	ExpiresAt   time.Time
	Invalidated bool // Soft-revocation flag; rows are never deleted
	CreatedAt   time.Time
}

// Expired reports whether the token is past its expiry at instant now.
// The upper bound is exclusive: a token inspected exactly at ExpiresAt is
// already expired.
func (r *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Usable reports whether the token can still be redeemed at instant now.
func (r *RefreshToken) Usable(now time.Time) bool {
	return !r.Invalidated && !r.Expired(now)
}

// TokenPair is the result of login and refresh operations.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
