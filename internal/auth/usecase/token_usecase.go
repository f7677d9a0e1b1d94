package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	authService "github.com/allisson/sessions/internal/auth/service"
	"github.com/allisson/sessions/internal/config"
	"github.com/allisson/sessions/internal/database"
	identityDomain "github.com/allisson/sessions/internal/identity/domain"
	identityService "github.com/allisson/sessions/internal/identity/service"
	userDomain "github.com/allisson/sessions/internal/user/domain"
)

// tokenUseCase implements TokenUseCase for the session token lifecycle.
type tokenUseCase struct {
	config              *config.Config
	txManager           database.TxManager
	identityRepo        IdentityRepository
	roleRepo            RoleRepository
	userRepo            UserRepository
	refreshTokenRepo    RefreshTokenRepository
	passwordService     identityService.PasswordService
	jwtService          authService.JWTService
	refreshTokenService authService.RefreshTokenService
	revocationService   authService.RevocationService
	roleClaimsService   authService.RoleClaimsService
}

// Login authenticates an email/password pair and mints a new token pair.
//
// Security Notes:
//   - Returns ErrInvalidCredentials for both unknown emails and wrong
//     passwords to prevent account enumeration
//   - The refresh token row is chained to the access token through the jti
//     claim, so a stolen refresh token cannot be redeemed with a foreign
//     access token
func (t *tokenUseCase) Login(ctx context.Context, email, password string) (*authDomain.TokenPair, error) {
	identity, err := t.identityRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, identityDomain.ErrIdentityNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !t.passwordService.VerifyPassword(password, identity.PasswordHash) {
		return nil, authDomain.ErrInvalidCredentials
	}

	user, err := t.userRepo.GetByIdentityID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	role, err := t.resolveRole(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	return t.mintPair(ctx, identity.Email, user.ID, role)
}

// Refresh redeems a refresh token and mints a replacement pair.
//
// The access token is validated in full except for its lifetime: on this
// path it is expected to have expired, but it must still prove it belongs
// to this issuer. The refresh token must be live, unexpired, and chained to
// the presented access token through the jti claim.
//
// Security Notes:
//   - Every failure mode collapses into ErrInvalidToken so callers cannot
//     probe which check rejected the presentation
//   - The invalidation claim is atomic: when the same refresh token is
//     presented concurrently, exactly one caller receives a new pair
//   - The role claim is re-resolved from the database, so a pair minted
//     after a role change carries the new role
func (t *tokenUseCase) Refresh(
	ctx context.Context,
	accessToken, refreshToken string,
) (*authDomain.TokenPair, error) {
	claims, err := t.jwtService.ParseExpired(accessToken)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}

	stored, err := t.refreshTokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, authDomain.ErrRefreshTokenNotFound) {
			return nil, authDomain.ErrInvalidToken
		}
		return nil, err
	}

	if !stored.Usable(time.Now().UTC()) {
		return nil, authDomain.ErrInvalidToken
	}

	if stored.JTI != claims.JTI {
		return nil, authDomain.ErrInvalidToken
	}

	user, err := t.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, userDomain.ErrUserNotFound) {
			return nil, authDomain.ErrInvalidToken
		}
		return nil, err
	}

	identity, err := t.identityRepo.GetByID(ctx, user.IdentityID)
	if err != nil {
		if errors.Is(err, identityDomain.ErrIdentityNotFound) {
			return nil, authDomain.ErrInvalidToken
		}
		return nil, err
	}

	role, err := t.resolveRole(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	var pair *authDomain.TokenPair
	err = t.txManager.WithTx(ctx, func(ctx context.Context) error {
		claimed, err := t.refreshTokenRepo.Invalidate(ctx, refreshToken)
		if err != nil {
			return err
		}
		// A concurrent redemption already claimed the token.
		if !claimed {
			return authDomain.ErrInvalidToken
		}

		pair, err = t.mintPair(ctx, identity.Email, user.ID, role)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// Logout invalidates the refresh token and revokes its chained jti so the
// matching access token stops authenticating before its natural expiry.
// Logging out with an already-used refresh token is a no-op rather than an
// error; the jti is re-registered, which is an idempotent upsert.
func (t *tokenUseCase) Logout(ctx context.Context, refreshToken string) error {
	stored, err := t.refreshTokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, authDomain.ErrRefreshTokenNotFound) {
			return authDomain.ErrInvalidToken
		}
		return err
	}

	if _, err := t.refreshTokenRepo.Invalidate(ctx, refreshToken); err != nil {
		return err
	}

	return t.revocationService.Revoke(ctx, stored.JTI, string(authDomain.ReasonLogout))
}

// resolveRole returns the identity's assigned role, defaulting to the base
// role when no assignment exists.
func (t *tokenUseCase) resolveRole(ctx context.Context, identityID uuid.UUID) (identityDomain.RoleType, error) {
	role, err := t.roleRepo.GetForIdentity(ctx, identityID)
	if err != nil {
		if errors.Is(err, identityDomain.ErrRoleNotFound) {
			return identityDomain.RoleUser, nil
		}
		return "", err
	}
	return role.Name, nil
}

// mintPair issues a signed access token and a chained refresh token row.
// The role's permission claims are resolved through the role-claims cache
// and embedded in the token, so consumers can authorize from it alone.
func (t *tokenUseCase) mintPair(
	ctx context.Context,
	email string,
	userID uuid.UUID,
	role identityDomain.RoleType,
) (*authDomain.TokenPair, error) {
	permissions, err := t.roleClaimsService.GetClaims(ctx, role)
	if err != nil {
		return nil, err
	}

	accessToken, jti, err := t.jwtService.Issue(email, userID, role.String(), permissions)
	if err != nil {
		return nil, err
	}

	opaque, err := t.refreshTokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	refreshToken := &authDomain.RefreshToken{
		Token:     opaque,
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(t.config.RefreshTokenExpiration),
	}

	if err := t.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, err
	}

	return &authDomain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: opaque,
	}, nil
}

// normalizeEmail lowercases and trims an email so lookups match the
// normalized form stored on the identity.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewTokenUseCase creates a new TokenUseCase with the provided dependencies.
func NewTokenUseCase(
	cfg *config.Config,
	txManager database.TxManager,
	identityRepo IdentityRepository,
	roleRepo RoleRepository,
	userRepo UserRepository,
	refreshTokenRepo RefreshTokenRepository,
	passwordService identityService.PasswordService,
	jwtService authService.JWTService,
	refreshTokenService authService.RefreshTokenService,
	revocationService authService.RevocationService,
	roleClaimsService authService.RoleClaimsService,
) TokenUseCase {
	return &tokenUseCase{
		config:              cfg,
		txManager:           txManager,
		identityRepo:        identityRepo,
		roleRepo:            roleRepo,
		userRepo:            userRepo,
		refreshTokenRepo:    refreshTokenRepo,
		passwordService:     passwordService,
		jwtService:          jwtService,
		refreshTokenService: refreshTokenService,
		revocationService:   revocationService,
		roleClaimsService:   roleClaimsService,
	}
}
