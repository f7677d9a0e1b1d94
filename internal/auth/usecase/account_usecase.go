package usecase

import (
	"context"
	"errors"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	authService "github.com/allisson/sessions/internal/auth/service"
	"github.com/allisson/sessions/internal/database"
	identityDomain "github.com/allisson/sessions/internal/identity/domain"
	identityService "github.com/allisson/sessions/internal/identity/service"
	userDomain "github.com/allisson/sessions/internal/user/domain"
	appValidation "github.com/allisson/sessions/internal/validation"
)

// accountUseCase implements AccountUseCase for registration, role
// management, and account deletion.
type accountUseCase struct {
	txManager         database.TxManager
	identityRepo      IdentityRepository
	roleRepo          RoleRepository
	userRepo          UserRepository
	refreshTokenRepo  RefreshTokenRepository
	passwordService   identityService.PasswordService
	revocationService authService.RevocationService
	roleClaimsService authService.RoleClaimsService
}

// validateRegisterInput validates the registration input using jellydator/validation.
// Passwords must be at least 8 characters with uppercase, lowercase, number,
// and special character.
func (a *accountUseCase) validateRegisterInput(input RegisterInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireNumber:  true,
				RequireSpecial: true,
			},
		),
		validation.Field(&input.FirstName,
			validation.Required.Error("first name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("first name must be between 1 and 255 characters"),
		),
		validation.Field(&input.LastName,
			validation.Required.Error("last name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("last name must be between 1 and 255 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Register creates an identity, assigns the requested role, and creates the
// linked user profile in one unit of work. An empty role falls back to the
// base role.
func (a *accountUseCase) Register(ctx context.Context, input RegisterInput) (*userDomain.User, error) {
	if err := a.validateRegisterInput(input); err != nil {
		return nil, err
	}

	roleType := identityDomain.RoleUser
	if input.Role != "" {
		parsed, err := identityDomain.ParseRoleType(input.Role)
		if err != nil {
			return nil, err
		}
		roleType = parsed
	}

	passwordHash, err := a.passwordService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	identity := &identityDomain.Identity{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        normalizeEmail(input.Email),
		PasswordHash: passwordHash,
	}

	user := &userDomain.User{
		ID:         uuid.Must(uuid.NewV7()),
		IdentityID: identity.ID,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
	}

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.identityRepo.Create(ctx, identity); err != nil {
			return err
		}

		role, err := a.roleRepo.GetByName(ctx, roleType)
		if err != nil {
			return err
		}

		if err := a.roleRepo.Assign(ctx, identity.ID, role.ID); err != nil {
			return err
		}

		return a.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUserRole replaces the user's role and cuts off every live session.
//
// The role swap and the refresh token sweep commit together; the revocation
// registry and the role-claims cache are updated after the commit, so a
// failed transaction leaves both untouched.
func (a *accountUseCase) UpdateUserRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	roleType, err := identityDomain.ParseRoleType(roleName)
	if err != nil {
		return err
	}

	user, err := a.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	var jtis []uuid.UUID
	var previousRole identityDomain.RoleType

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		newRole, err := a.roleRepo.GetByName(ctx, roleType)
		if err != nil {
			return err
		}

		current, err := a.roleRepo.GetForIdentity(ctx, user.IdentityID)
		switch {
		case err == nil:
			previousRole = current.Name
		case errors.Is(err, identityDomain.ErrRoleNotFound):
			// No prior assignment; nothing to invalidate in the claims cache.
		default:
			return err
		}

		if err := a.roleRepo.ReplaceForIdentity(ctx, user.IdentityID, newRole.ID); err != nil {
			return err
		}

		jtis, err = a.refreshTokenRepo.InvalidateAllForUser(ctx, userID)
		return err
	})
	if err != nil {
		return err
	}

	for _, jti := range jtis {
		if err := a.revocationService.Revoke(ctx, jti, string(authDomain.ReasonRoleChanged)); err != nil {
			return err
		}
	}

	roles := []identityDomain.RoleType{roleType}
	if previousRole != "" && previousRole != roleType {
		roles = append(roles, previousRole)
	}
	return a.roleClaimsService.Invalidate(ctx, roles...)
}

// DeleteUser removes the user's identity and everything chained to it.
// Refresh tokens are swept first so their jtis can be registered in the
// revocation registry; the identity delete then cascades to the role
// assignment, the user profile, and the refresh token rows.
func (a *accountUseCase) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	user, err := a.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	var jtis []uuid.UUID

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		jtis, err = a.refreshTokenRepo.InvalidateAllForUser(ctx, userID)
		if err != nil {
			return err
		}

		return a.identityRepo.Delete(ctx, user.IdentityID)
	})
	if err != nil {
		return err
	}

	for _, jti := range jtis {
		if err := a.revocationService.Revoke(ctx, jti, string(authDomain.ReasonUserDeleted)); err != nil {
			return err
		}
	}

	return nil
}

// NewAccountUseCase creates a new AccountUseCase with the provided dependencies.
func NewAccountUseCase(
	txManager database.TxManager,
	identityRepo IdentityRepository,
	roleRepo RoleRepository,
	userRepo UserRepository,
	refreshTokenRepo RefreshTokenRepository,
	passwordService identityService.PasswordService,
	revocationService authService.RevocationService,
	roleClaimsService authService.RoleClaimsService,
) AccountUseCase {
	return &accountUseCase{
		txManager:         txManager,
		identityRepo:      identityRepo,
		roleRepo:          roleRepo,
		userRepo:          userRepo,
		refreshTokenRepo:  refreshTokenRepo,
		passwordService:   passwordService,
		revocationService: revocationService,
		roleClaimsService: roleClaimsService,
	}
}
