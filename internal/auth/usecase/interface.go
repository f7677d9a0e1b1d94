// Package usecase implements business logic orchestration for session token
// and account lifecycle operations.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	identityDomain "github.com/allisson/sessions/internal/identity/domain"
	userDomain "github.com/allisson/sessions/internal/user/domain"
)

// IdentityRepository defines persistence operations for identities.
// Implementations must support transaction-aware operations via context propagation.
type IdentityRepository interface {
	// Create stores a new identity. Returns ErrEmailAlreadyRegistered when
	// the email is taken.
	Create(ctx context.Context, identity *identityDomain.Identity) error

	// GetByEmail retrieves an identity by its normalized email. Returns
	// ErrIdentityNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*identityDomain.Identity, error)

	// GetByID retrieves an identity by ID. Returns ErrIdentityNotFound if not found.
	GetByID(ctx context.Context, identityID uuid.UUID) (*identityDomain.Identity, error)

	// Delete removes an identity. Dependent rows (role assignments, user
	// profile, refresh tokens) go with it through cascading constraints.
	Delete(ctx context.Context, identityID uuid.UUID) error
}

// RoleRepository defines persistence operations for roles and their claims.
type RoleRepository interface {
	// GetByName retrieves a role by its canonical name. Returns
	// ErrRoleNotFound if not found.
	GetByName(ctx context.Context, name identityDomain.RoleType) (*identityDomain.Role, error)

	// GetForIdentity retrieves the role assigned to an identity. Returns
	// ErrRoleNotFound when the identity has no assignment.
	GetForIdentity(ctx context.Context, identityID uuid.UUID) (*identityDomain.Role, error)

	// Assign attaches a role to an identity.
	Assign(ctx context.Context, identityID, roleID uuid.UUID) error

	// ReplaceForIdentity swaps the identity's role assignment. Callers run
	// this inside a transaction.
	ReplaceForIdentity(ctx context.Context, identityID, roleID uuid.UUID) error

	// ListClaims returns the claim values attached to the named role.
	ListClaims(ctx context.Context, name identityDomain.RoleType) ([]string, error)
}

// UserRepository defines persistence operations for user profiles.
type UserRepository interface {
	// Create stores a new user profile.
	Create(ctx context.Context, user *userDomain.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if not found.
	GetByID(ctx context.Context, userID uuid.UUID) (*userDomain.User, error)

	// GetByIdentityID retrieves the user owned by an identity. Returns
	// ErrUserNotFound if not found.
	GetByIdentityID(ctx context.Context, identityID uuid.UUID) (*userDomain.User, error)

	// Delete removes a user profile.
	Delete(ctx context.Context, userID uuid.UUID) error
}

// RefreshTokenRepository defines persistence operations for refresh tokens.
// Rows are soft-invalidated, never deleted, so replayed values stay detectable.
type RefreshTokenRepository interface {
	// Create stores a new refresh token.
	Create(ctx context.Context, token *authDomain.RefreshToken) error

	// GetByToken retrieves a refresh token by its opaque value. Returns
	// ErrRefreshTokenNotFound if not found.
	GetByToken(ctx context.Context, token string) (*authDomain.RefreshToken, error)

	// Invalidate atomically claims a live token. Exactly one of any number
	// of concurrent callers observes claimed=true.
	Invalidate(ctx context.Context, token string) (claimed bool, err error)

	// InvalidateAllForUser soft-revokes every live token owned by the user
	// and returns the jtis of the access tokens they were chained to.
	InvalidateAllForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// RegisterInput contains the input data for account registration. Role is
// optional: it is validated against the closed role set and defaults to the
// base role when empty.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// TokenUseCase defines the session token lifecycle: password login mints a
// token pair, refresh rotates it, logout cuts it off early.
type TokenUseCase interface {
	// Login authenticates an email/password pair and mints a new token
	// pair. Returns ErrInvalidCredentials when either the email or the
	// password does not match, without distinguishing the two.
	Login(ctx context.Context, email, password string) (*authDomain.TokenPair, error)

	// Refresh redeems a refresh token together with the access token it was
	// issued with, and mints a replacement pair. The refresh token is
	// single-use: a replayed or mismatched presentation fails with
	// ErrInvalidToken, as does every other failure mode.
	Refresh(ctx context.Context, accessToken, refreshToken string) (*authDomain.TokenPair, error)

	// Logout invalidates the refresh token and registers its chained jti in
	// the revocation registry, cutting the session off before the access
	// token's natural expiry.
	Logout(ctx context.Context, refreshToken string) error
}

// AccountUseCase defines account lifecycle operations: registration, role
// management, and deletion. Role changes and deletion revoke every live
// session of the affected user.
type AccountUseCase interface {
	// Register creates an identity with a hashed password, assigns the
	// requested role (the default role when none is given), and creates the
	// linked user profile, all in one unit of work. Returns
	// ErrEmailAlreadyRegistered when the email is taken and ErrInvalidRole
	// when the role is outside the known set.
	Register(ctx context.Context, input RegisterInput) (*userDomain.User, error)

	// UpdateUserRole replaces the user's role. Every live refresh token of
	// the user is invalidated and the chained jtis are registered in the
	// revocation registry, so outstanding access tokens stop carrying the
	// stale role claim.
	UpdateUserRole(ctx context.Context, userID uuid.UUID, roleName string) error

	// DeleteUser removes the user, its identity, and all dependent rows,
	// revoking every live session on the way out.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}
