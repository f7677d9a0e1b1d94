package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/sessions/internal/cache"
	apperrors "github.com/allisson/sessions/internal/errors"
)

// revokedKeyPrefix namespaces revocation entries in the shared cache.
const revokedKeyPrefix = "auth:revoked:"

// revocationService implements RevocationService on top of the cache
// capability. Entries carry the revocation reason and expire after the
// access token lifetime, when the exp claim takes over.
type revocationService struct {
	cache cache.Cache
	ttl   time.Duration
}

// Revoke registers a jti with the reason it was cut off.
func (s *revocationService) Revoke(ctx context.Context, jti uuid.UUID, reason string) error {
	if err := s.cache.Set(ctx, revokedKeyPrefix+jti.String(), []byte(reason), s.ttl); err != nil {
		return apperrors.Wrap(err, "failed to register revoked token")
	}
	return nil
}

// IsRevoked reports whether the jti is in the registry, returning the
// stored revocation reason when it is.
func (s *revocationService) IsRevoked(ctx context.Context, jti uuid.UUID) (string, bool, error) {
	value, found, err := s.cache.Get(ctx, revokedKeyPrefix+jti.String())
	if err != nil {
		return "", false, apperrors.Wrap(err, "failed to check revoked token")
	}
	if !found {
		return "", false, nil
	}
	return string(value), true, nil
}

// NewRevocationService creates a RevocationService. The ttl should match the
// access token lifetime so entries outlive every token they block.
func NewRevocationService(c cache.Cache, ttl time.Duration) RevocationService {
	return &revocationService{cache: c, ttl: ttl}
}
