package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RoleType enumerates the roles an identity can hold. The set is closed:
// role assignment validates against it instead of trusting free-form input.
type RoleType string

const (
	RoleUser  RoleType = "user"
	RoleTutor RoleType = "tutor"
	RoleAdmin RoleType = "admin"
)

// ParseRoleType normalizes and validates a role name. Matching is
// case-insensitive; the canonical lowercase form is returned.
func ParseRoleType(name string) (RoleType, error) {
	switch RoleType(strings.ToLower(strings.TrimSpace(name))) {
	case RoleUser:
		return RoleUser, nil
	case RoleTutor:
		return RoleTutor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// String returns the canonical role name.
func (r RoleType) String() string {
	return string(r)
}

// Role represents a named role that identities can be assigned to.
type Role struct {
	ID        uuid.UUID // Unique identifier (UUIDv7)
	Name      RoleType  // Canonical role name, unique
	CreatedAt time.Time
}

// RoleClaim is a permission attached to a role, e.g. "users:read".
// Claims are resolved per role and attached to access tokens indirectly
// through the role-claims cache.
type RoleClaim struct {
	ID        uuid.UUID // Unique identifier (UUIDv7)
	RoleID    uuid.UUID
	ClaimType string // Claim category, e.g. "permission"
	Value     string // Claim value, e.g. "admin:users:read"
	CreatedAt time.Time
}
