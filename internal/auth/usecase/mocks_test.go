package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	authService "github.com/allisson/sessions/internal/auth/service"
	identityDomain "github.com/allisson/sessions/internal/identity/domain"
	userDomain "github.com/allisson/sessions/internal/user/domain"
)

// fakeTxManager runs the unit of work on the caller's context without a real
// transaction, so repository mocks see the same ctx the test passed in.
type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// mockIdentityRepository is a mock implementation of IdentityRepository for testing.
type mockIdentityRepository struct {
	mock.Mock
}

func (m *mockIdentityRepository) Create(ctx context.Context, identity *identityDomain.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *mockIdentityRepository) GetByEmail(
	ctx context.Context,
	email string,
) (*identityDomain.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Identity), args.Error(1)
}

func (m *mockIdentityRepository) GetByID(
	ctx context.Context,
	identityID uuid.UUID,
) (*identityDomain.Identity, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Identity), args.Error(1)
}

func (m *mockIdentityRepository) Delete(ctx context.Context, identityID uuid.UUID) error {
	args := m.Called(ctx, identityID)
	return args.Error(0)
}

// mockRoleRepository is a mock implementation of RoleRepository for testing.
type mockRoleRepository struct {
	mock.Mock
}

func (m *mockRoleRepository) GetByName(
	ctx context.Context,
	name identityDomain.RoleType,
) (*identityDomain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Role), args.Error(1)
}

func (m *mockRoleRepository) GetForIdentity(
	ctx context.Context,
	identityID uuid.UUID,
) (*identityDomain.Role, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Role), args.Error(1)
}

func (m *mockRoleRepository) Assign(ctx context.Context, identityID, roleID uuid.UUID) error {
	args := m.Called(ctx, identityID, roleID)
	return args.Error(0)
}

func (m *mockRoleRepository) ReplaceForIdentity(ctx context.Context, identityID, roleID uuid.UUID) error {
	args := m.Called(ctx, identityID, roleID)
	return args.Error(0)
}

func (m *mockRoleRepository) ListClaims(
	ctx context.Context,
	name identityDomain.RoleType,
) ([]string, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// mockUserRepository is a mock implementation of UserRepository for testing.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *userDomain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserRepository) GetByIdentityID(
	ctx context.Context,
	identityID uuid.UUID,
) (*userDomain.User, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// mockRefreshTokenRepository is a mock implementation of RefreshTokenRepository for testing.
type mockRefreshTokenRepository struct {
	mock.Mock
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *authDomain.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) GetByToken(
	ctx context.Context,
	token string,
) (*authDomain.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepository) Invalidate(
	ctx context.Context,
	token string,
) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockRefreshTokenRepository) InvalidateAllForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// mockPasswordService is a mock implementation of PasswordService for testing.
type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) HashPassword(plainPassword string) (string, error) {
	args := m.Called(plainPassword)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) VerifyPassword(plainPassword, hashedPassword string) bool {
	args := m.Called(plainPassword, hashedPassword)
	return args.Bool(0)
}

// mockJWTService is a mock implementation of JWTService for testing.
type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) Issue(email string, userID uuid.UUID, role string, permissions []string) (string, uuid.UUID, error) {
	args := m.Called(email, userID, role, permissions)
	return args.String(0), args.Get(1).(uuid.UUID), args.Error(2)
}

func (m *mockJWTService) Parse(tokenString string) (*authService.AccessToken, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authService.AccessToken), args.Error(1)
}

func (m *mockJWTService) ParseExpired(tokenString string) (*authService.AccessToken, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authService.AccessToken), args.Error(1)
}

// mockRefreshTokenService is a mock implementation of RefreshTokenService for testing.
type mockRefreshTokenService struct {
	mock.Mock
}

func (m *mockRefreshTokenService) GenerateToken() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// mockRevocationService is a mock implementation of RevocationService for testing.
type mockRevocationService struct {
	mock.Mock
}

func (m *mockRevocationService) Revoke(ctx context.Context, jti uuid.UUID, reason string) error {
	args := m.Called(ctx, jti, reason)
	return args.Error(0)
}

func (m *mockRevocationService) IsRevoked(ctx context.Context, jti uuid.UUID) (string, bool, error) {
	args := m.Called(ctx, jti)
	return args.String(0), args.Bool(1), args.Error(2)
}

// mockRoleClaimsService is a mock implementation of RoleClaimsService for testing.
type mockRoleClaimsService struct {
	mock.Mock
}

func (m *mockRoleClaimsService) GetClaims(
	ctx context.Context,
	role identityDomain.RoleType,
) ([]string, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockRoleClaimsService) Invalidate(
	ctx context.Context,
	roles ...identityDomain.RoleType,
) error {
	args := m.Called(ctx, roles)
	return args.Error(0)
}
