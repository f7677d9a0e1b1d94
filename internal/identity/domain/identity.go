// Package domain defines the identity models and business rules.
//
// An Identity holds the credentials (email and password hash) used to
// authenticate, while roles and their claims drive authorization. Profile
// data lives in the user domain and references an identity by ID.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity represents a credential record used for authentication.
type Identity struct {
	ID           uuid.UUID // Unique identifier (UUIDv7)
	Email        string    // Normalized (lowercased, trimmed) email, unique
	PasswordHash string    // Argon2id password hash (never plaintext)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
