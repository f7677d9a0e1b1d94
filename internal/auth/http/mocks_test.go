package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	authService "github.com/allisson/sessions/internal/auth/service"
	authUseCase "github.com/allisson/sessions/internal/auth/usecase"
	identityDomain "github.com/allisson/sessions/internal/identity/domain"
	userDomain "github.com/allisson/sessions/internal/user/domain"
)

// testLogger returns a logger that discards output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestContext builds a gin test context with an optional JSON body.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

// mockTokenUseCase is a mock implementation of TokenUseCase for testing.
type mockTokenUseCase struct {
	mock.Mock
}

func (m *mockTokenUseCase) Login(ctx context.Context, email, password string) (*authDomain.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.TokenPair), args.Error(1)
}

func (m *mockTokenUseCase) Refresh(
	ctx context.Context,
	accessToken, refreshToken string,
) (*authDomain.TokenPair, error) {
	args := m.Called(ctx, accessToken, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.TokenPair), args.Error(1)
}

func (m *mockTokenUseCase) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

// mockAccountUseCase is a mock implementation of AccountUseCase for testing.
type mockAccountUseCase struct {
	mock.Mock
}

func (m *mockAccountUseCase) Register(
	ctx context.Context,
	input authUseCase.RegisterInput,
) (*userDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockAccountUseCase) UpdateUserRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	args := m.Called(ctx, userID, roleName)
	return args.Error(0)
}

func (m *mockAccountUseCase) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
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
