package domain

import (
	"github.com/allisson/sessions/internal/errors"
)

// Identity domain errors.
var (
	// ErrIdentityNotFound indicates no identity exists for the given ID or email.
	ErrIdentityNotFound = errors.Wrap(errors.ErrNotFound, "identity not found")

	// ErrRoleNotFound indicates a role with the specified name was not found.
	ErrRoleNotFound = errors.Wrap(errors.ErrNotFound, "role not found")

	// ErrEmailAlreadyRegistered indicates the email is taken by another identity.
	ErrEmailAlreadyRegistered = errors.Wrap(errors.ErrConflict, "email already registered")

	// ErrInvalidRole indicates the role name is outside the known role set.
	ErrInvalidRole = errors.Wrap(errors.ErrInvalidInput, "invalid role")
)
