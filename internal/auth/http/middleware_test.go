package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	authService "github.com/allisson/sessions/internal/auth/service"
	identityDomain "github.com/allisson/sessions/internal/identity/domain"
)

// validAccessToken returns claims for a token the middleware should accept.
func validAccessToken() *authService.AccessToken {
	return &authService.AccessToken{
		Email:     "alice@example.com",
		UserID:    uuid.Must(uuid.NewV7()),
		Role:      "user",
		JTI:       uuid.Must(uuid.NewV7()),
		ExpiresAt: time.Now().UTC().Add(30 * time.Minute),
	}
}

// performRequest runs a request through a router built from the given
// middleware chain, with a terminal handler that records the claims it sees.
func performRequest(
	middleware []gin.HandlerFunc,
	headers map[string]string,
) (*httptest.ResponseRecorder, *authService.AccessToken) {
	gin.SetMode(gin.TestMode)

	var seenToken *authService.AccessToken

	router := gin.New()
	router.Use(middleware...)
	router.GET("/protected", func(c *gin.Context) {
		if token, ok := GetAccessToken(c.Request.Context()); ok {
			seenToken = token
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w, seenToken
}

func TestAuthenticationMiddleware(t *testing.T) {
	t.Run("Success_ValidBearerToken", func(t *testing.T) {
		mockJWT := &mockJWTService{}
		token := validAccessToken()

		mockJWT.On("Parse", "valid-token").Return(token, nil).Once()

		w, seenToken := performRequest(
			[]gin.HandlerFunc{AuthenticationMiddleware(mockJWT, testLogger())},
			map[string]string{"Authorization": "Bearer valid-token"},
		)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, token, seenToken)
		mockJWT.AssertExpectations(t)
	})

	t.Run("Success_BearerPrefixIsCaseInsensitive", func(t *testing.T) {
		mockJWT := &mockJWTService{}
		token := validAccessToken()

		mockJWT.On("Parse", "valid-token").Return(token, nil).Once()

		w, _ := performRequest(
			[]gin.HandlerFunc{AuthenticationMiddleware(mockJWT, testLogger())},
			map[string]string{"Authorization": "bearer valid-token"},
		)

		assert.Equal(t, http.StatusOK, w.Code)
		mockJWT.AssertExpectations(t)
	})

	t.Run("Error_MissingAuthorizationHeader", func(t *testing.T) {
		mockJWT := &mockJWTService{}

		w, _ := performRequest(
			[]gin.HandlerFunc{AuthenticationMiddleware(mockJWT, testLogger())},
			nil,
		)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "unauthorized", response["error"])

		mockJWT.AssertNotCalled(t, "Parse", mock.Anything)
	})

	t.Run("Error_MalformedAuthorizationHeader", func(t *testing.T) {
		mockJWT := &mockJWTService{}

		w, _ := performRequest(
			[]gin.HandlerFunc{AuthenticationMiddleware(mockJWT, testLogger())},
			map[string]string{"Authorization": "Basic dXNlcjpwYXNz"},
		)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockJWT.AssertNotCalled(t, "Parse", mock.Anything)
	})

	t.Run("Error_EmptyBearerToken", func(t *testing.T) {
		mockJWT := &mockJWTService{}

		w, _ := performRequest(
			[]gin.HandlerFunc{AuthenticationMiddleware(mockJWT, testLogger())},
			map[string]string{"Authorization": "Bearer "},
		)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockJWT.AssertNotCalled(t, "Parse", mock.Anything)
	})

	t.Run("Error_InvalidToken", func(t *testing.T) {
		mockJWT := &mockJWTService{}

		mockJWT.On("Parse", "bad-token").Return(nil, authDomain.ErrInvalidToken).Once()

		w, _ := performRequest(
			[]gin.HandlerFunc{AuthenticationMiddleware(mockJWT, testLogger())},
			map[string]string{"Authorization": "Bearer bad-token"},
		)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockJWT.AssertExpectations(t)
	})
}

func TestRevocationMiddleware(t *testing.T) {
	t.Run("Success_TokenNotRevoked", func(t *testing.T) {
		mockJWT := &mockJWTService{}
		mockRevocation := &mockRevocationService{}
		token := validAccessToken()

		mockJWT.On("Parse", "valid-token").Return(token, nil).Once()
		mockRevocation.On("IsRevoked", mock.Anything, token.JTI).Return("", false, nil).Once()

		w, _ := performRequest(
			[]gin.HandlerFunc{
				AuthenticationMiddleware(mockJWT, testLogger()),
				RevocationMiddleware(mockRevocation, testLogger()),
			},
			map[string]string{"Authorization": "Bearer valid-token"},
		)

		assert.Equal(t, http.StatusOK, w.Code)
		mockRevocation.AssertExpectations(t)
	})

	t.Run("Success_PassesThroughWithoutClaims", func(t *testing.T) {
		mockRevocation := &mockRevocationService{}

		w, _ := performRequest(
			[]gin.HandlerFunc{RevocationMiddleware(mockRevocation, testLogger())},
			nil,
		)

		assert.Equal(t, http.StatusOK, w.Code)
		mockRevocation.AssertNotCalled(t, "IsRevoked", mock.Anything, mock.Anything)
	})

	t.Run("Error_RevokedToken", func(t *testing.T) {
		mockJWT := &mockJWTService{}
		mockRevocation := &mockRevocationService{}
		token := validAccessToken()

		mockJWT.On("Parse", "revoked-token").Return(token, nil).Once()
		mockRevocation.On("IsRevoked", mock.Anything, token.JTI).Return("logout", true, nil).Once()

		w, _ := performRequest(
			[]gin.HandlerFunc{
				AuthenticationMiddleware(mockJWT, testLogger()),
				RevocationMiddleware(mockRevocation, testLogger()),
			},
			map[string]string{"Authorization": "Bearer revoked-token"},
		)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "unauthorized", response["error"])

		mockRevocation.AssertExpectations(t)
	})

	t.Run("Error_RegistryLookupFailure", func(t *testing.T) {
		mockJWT := &mockJWTService{}
		mockRevocation := &mockRevocationService{}
		token := validAccessToken()

		mockJWT.On("Parse", "valid-token").Return(token, nil).Once()
		mockRevocation.On("IsRevoked", mock.Anything, token.JTI).
			Return("", false, errors.New("cache unavailable")).
			Once()

		w, _ := performRequest(
			[]gin.HandlerFunc{
				AuthenticationMiddleware(mockJWT, testLogger()),
				RevocationMiddleware(mockRevocation, testLogger()),
			},
			map[string]string{"Authorization": "Bearer valid-token"},
		)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockRevocation.AssertExpectations(t)
	})
}

func TestAuthorizationMiddleware(t *testing.T) {
	const requiredClaim = "admin:users:write"

	t.Run("Success_RoleCarriesRequiredClaim", func(t *testing.T) {
		mockJWT := &mockJWTService{}
		mockClaims := &mockRoleClaimsService{}
		token := validAccessToken()
		token.Role = "admin"

		mockJWT.On("Parse", "admin-token").Return(token, nil).Once()
		mockClaims.On("GetClaims", mock.Anything, identityDomain.RoleAdmin).
			Return([]string{"users:read", "admin:users:read", "admin:users:write"}, nil).
			Once()

		w, _ := performRequest(
			[]gin.HandlerFunc{
				AuthenticationMiddleware(mockJWT, testLogger()),
				AuthorizationMiddleware(requiredClaim, mockClaims, testLogger()),
			},
			map[string]string{"Authorization": "Bearer admin-token"},
		)

		assert.Equal(t, http.StatusOK, w.Code)
		mockClaims.AssertExpectations(t)
	})

	t.Run("Error_NoClaimsInContext", func(t *testing.T) {
		mockClaims := &mockRoleClaimsService{}

		w, _ := performRequest(
			[]gin.HandlerFunc{AuthorizationMiddleware(requiredClaim, mockClaims, testLogger())},
			nil,
		)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockClaims.AssertNotCalled(t, "GetClaims", mock.Anything, mock.Anything)
	})

	t.Run("Error_UnknownRoleClaim", func(t *testing.T) {
		mockJWT := &mockJWTService{}
		mockClaims := &mockRoleClaimsService{}
		token := validAccessToken()
		token.Role = "superuser"

		mockJWT.On("Parse", "odd-token").Return(token, nil).Once()

		w, _ := performRequest(
			[]gin.HandlerFunc{
				AuthenticationMiddleware(mockJWT, testLogger()),
				AuthorizationMiddleware(requiredClaim, mockClaims, testLogger()),
			},
			map[string]string{"Authorization": "Bearer odd-token"},
		)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockClaims.AssertNotCalled(t, "GetClaims", mock.Anything, mock.Anything)
	})

	t.Run("Error_ClaimMissing", func(t *testing.T) {
		mockJWT := &mockJWTService{}
		mockClaims := &mockRoleClaimsService{}
		token := validAccessToken()

		mockJWT.On("Parse", "user-token").Return(token, nil).Once()
		mockClaims.On("GetClaims", mock.Anything, identityDomain.RoleUser).
			Return([]string{"users:read"}, nil).
			Once()

		w, _ := performRequest(
			[]gin.HandlerFunc{
				AuthenticationMiddleware(mockJWT, testLogger()),
				AuthorizationMiddleware(requiredClaim, mockClaims, testLogger()),
			},
			map[string]string{"Authorization": "Bearer user-token"},
		)

		assert.Equal(t, http.StatusForbidden, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "forbidden", response["error"])

		mockClaims.AssertExpectations(t)
	})

	t.Run("Error_ClaimsLookupFailure", func(t *testing.T) {
		mockJWT := &mockJWTService{}
		mockClaims := &mockRoleClaimsService{}
		token := validAccessToken()

		mockJWT.On("Parse", "user-token").Return(token, nil).Once()
		mockClaims.On("GetClaims", mock.Anything, identityDomain.RoleUser).
			Return(nil, errors.New("database unavailable")).
			Once()

		w, _ := performRequest(
			[]gin.HandlerFunc{
				AuthenticationMiddleware(mockJWT, testLogger()),
				AuthorizationMiddleware(requiredClaim, mockClaims, testLogger()),
			},
			map[string]string{"Authorization": "Bearer user-token"},
		)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockClaims.AssertExpectations(t)
	})
}
