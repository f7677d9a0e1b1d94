// Package http provides HTTP handlers and middleware for session token operations.
package http

import (
	"context"

	authService "github.com/allisson/sessions/internal/auth/service"
)

// accessTokenKey is a context key type for storing validated access tokens.
type accessTokenKey struct{}

// WithAccessToken stores a validated access token in the context.
// This is typically called by the authentication middleware after successful
// token validation.
func WithAccessToken(ctx context.Context, token *authService.AccessToken) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// GetAccessToken retrieves a validated access token from the context.
// Returns (token, true) if a token is present, or (nil, false) if the
// authentication middleware has not run on this request.
func GetAccessToken(ctx context.Context) (*authService.AccessToken, bool) {
	token, ok := ctx.Value(accessTokenKey{}).(*authService.AccessToken)
	return token, ok
}
