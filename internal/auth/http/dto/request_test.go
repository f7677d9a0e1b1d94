package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request LoginRequest
		wantErr bool
	}{
		{
			name:    "valid request",
			request: LoginRequest{Email: "alice@example.com", Password: "Test1234!"},
			wantErr: false,
		},
		{
			name:    "missing email",
			request: LoginRequest{Password: "Test1234!"},
			wantErr: true,
		},
		{
			name:    "blank password",
			request: LoginRequest{Email: "alice@example.com", Password: "   "},
			wantErr: true,
		},
		{
			// Format rules are deliberately absent on the login path.
			name:    "email shape is not checked",
			request: LoginRequest{Email: "not-an-email", Password: "Test1234!"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRefreshRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request RefreshRequest
		wantErr bool
	}{
		{
			name:    "valid request",
			request: RefreshRequest{AccessToken: "expired-jwt", RefreshToken: "opaque"},
			wantErr: false,
		},
		{
			name:    "missing access token",
			request: RefreshRequest{RefreshToken: "opaque"},
			wantErr: true,
		},
		{
			name:    "missing refresh token",
			request: RefreshRequest{AccessToken: "expired-jwt"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterRequest_Validate(t *testing.T) {
	valid := RegisterRequest{
		Email:     "alice@example.com",
		Password:  "Test1234!",
		FirstName: "Alice",
		LastName:  "Smith",
	}

	t.Run("valid request", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("invalid email format", func(t *testing.T) {
		req := valid
		req.Email = "not-an-email"
		assert.Error(t, req.Validate())
	})

	t.Run("blank first name", func(t *testing.T) {
		req := valid
		req.FirstName = " "
		assert.Error(t, req.Validate())
	})

	t.Run("missing last name", func(t *testing.T) {
		req := valid
		req.LastName = ""
		assert.Error(t, req.Validate())
	})
}

func TestUpdateRoleRequest_Validate(t *testing.T) {
	assert.NoError(t, (&UpdateRoleRequest{Role: "admin"}).Validate())
	assert.Error(t, (&UpdateRoleRequest{}).Validate())
	assert.Error(t, (&UpdateRoleRequest{Role: "  "}).Validate())
}

func TestLogoutRequest_Validate(t *testing.T) {
	assert.NoError(t, (&LogoutRequest{RefreshToken: "opaque"}).Validate())
	assert.Error(t, (&LogoutRequest{}).Validate())
}
