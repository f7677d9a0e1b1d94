package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := Load()

		assert.Equal(t, "0.0.0.0", cfg.ServerHost)
		assert.Equal(t, 8080, cfg.ServerPort)
		assert.Equal(t, "postgres", cfg.DBDriver)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 30*time.Minute, cfg.AccessTokenExpiration)
		assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenExpiration)
		assert.Equal(t, 10*time.Minute, cfg.RoleClaimsCacheTTL)
		assert.Equal(t, "sessions", cfg.JWTIssuer)
		assert.Equal(t, "sessions", cfg.JWTAudience)
		assert.True(t, cfg.MetricsEnabled)
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("DB_DRIVER", "mysql")
		t.Setenv("ACCESS_TOKEN_EXPIRATION_MINUTES", "15")
		t.Setenv("JWT_SIGNING_KEY", "test-signing-key")

		cfg := Load()

		assert.Equal(t, 9090, cfg.ServerPort)
		assert.Equal(t, "mysql", cfg.DBDriver)
		assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiration)
		assert.Equal(t, "test-signing-key", cfg.JWTSigningKey)
	})
}

func TestGetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		expected string
	}{
		{"debug", "debug"},
		{"info", "release"},
		{"warn", "release"},
		{"error", "release"},
		{"unknown", "release"},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			assert.Equal(t, tt.expected, cfg.GetGinMode())
		})
	}
}
