package domain

import (
	"github.com/allisson/sessions/internal/errors"
)

// Session token errors.
var (
	// ErrInvalidCredentials indicates the email or password did not match.
	// Deliberately indistinguishable between the two cases.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrInvalidToken indicates an access or refresh token failed validation.
	// All refresh failure modes collapse into this error so callers cannot
	// probe which check rejected the token.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrTokenRevoked indicates the access token's jti is in the revocation registry.
	ErrTokenRevoked = errors.Wrap(errors.ErrUnauthorized, "token revoked")

	// ErrRefreshTokenNotFound indicates no stored refresh token matches the
	// presented value. Use cases surface this as ErrInvalidToken.
	ErrRefreshTokenNotFound = errors.Wrap(errors.ErrNotFound, "refresh token not found")
)
