package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/allisson/sessions/internal/cache"
	apperrors "github.com/allisson/sessions/internal/errors"
	identityDomain "github.com/allisson/sessions/internal/identity/domain"
)

// roleClaimsKeyPrefix namespaces role-claims entries in the shared cache.
const roleClaimsKeyPrefix = "auth:roles:claims:"

// RoleClaimsLister is the slice of the role repository this service needs.
type RoleClaimsLister interface {
	ListClaims(ctx context.Context, name identityDomain.RoleType) ([]string, error)
}

// roleClaimsService implements RoleClaimsService with a cache-aside strategy:
// read the cache, fall back to the repository on a miss, then populate the
// cache with a bounded TTL so stale entries age out on their own.
type roleClaimsService struct {
	cache  cache.Cache
	lister RoleClaimsLister
	ttl    time.Duration
}

// GetClaims returns the claim values for the role, from cache when warm.
func (s *roleClaimsService) GetClaims(
	ctx context.Context,
	role identityDomain.RoleType,
) ([]string, error) {
	key := roleClaimsKey(role)

	if cached, found, err := s.cache.Get(ctx, key); err == nil && found {
		var claims []string
		if err := json.Unmarshal(cached, &claims); err == nil {
			return claims, nil
		}
		// Corrupt entry: fall through to the repository and overwrite it.
	}

	claims, err := s.lister.ListClaims(ctx, role)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(claims)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode role claims")
	}

	if err := s.cache.Set(ctx, key, encoded, s.ttl); err != nil {
		return nil, apperrors.Wrap(err, "failed to cache role claims")
	}

	return claims, nil
}

// Invalidate drops the cached claims for the given roles.
func (s *roleClaimsService) Invalidate(
	ctx context.Context,
	roles ...identityDomain.RoleType,
) error {
	for _, role := range roles {
		if err := s.cache.Delete(ctx, roleClaimsKey(role)); err != nil {
			return apperrors.Wrap(err, "failed to invalidate role claims")
		}
	}
	return nil
}

// roleClaimsKey builds the cache key for a role, lowercased so lookups are
// insensitive to how the role name was cased upstream.
func roleClaimsKey(role identityDomain.RoleType) string {
	return roleClaimsKeyPrefix + strings.ToLower(role.String())
}

// NewRoleClaimsService creates a RoleClaimsService with the given cache TTL.
func NewRoleClaimsService(c cache.Cache, lister RoleClaimsLister, ttl time.Duration) RoleClaimsService {
	return &roleClaimsService{cache: c, lister: lister, ttl: ttl}
}
