// Package domain defines the user profile model.
//
// A User is the profile record the rest of the system references. It is
// linked one-to-one with an identity, which owns the credentials; access
// tokens carry the user ID, not the identity ID.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/sessions/internal/errors"
)

// User represents a profile linked to an identity.
type User struct {
	ID         uuid.UUID // Unique identifier (UUIDv7)
	IdentityID uuid.UUID // Owning identity, unique
	FirstName  string
	LastName   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName returns the display name for the user.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// ErrUserNotFound indicates a user with the specified ID or identity was not found.
var ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")
