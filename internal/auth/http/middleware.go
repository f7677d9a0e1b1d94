// Package http provides HTTP handlers and middleware for session token operations.
package http

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	authService "github.com/allisson/sessions/internal/auth/service"
	apperrors "github.com/allisson/sessions/internal/errors"
	"github.com/allisson/sessions/internal/httputil"
	identityDomain "github.com/allisson/sessions/internal/identity/domain"
)

// AuthenticationMiddleware provides authentication via Bearer access token in
// the Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Validates it in full: signature, algorithm, issuer, audience, lifetime
// 3. Stores the validated claims in the request context
// 4. Allows downstream handlers to access them via GetAccessToken()
//
// The login, refresh, and register endpoints stay outside this middleware:
// they are the paths that mint tokens in the first place.
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Invalid, expired, or foreign token → 401 Unauthorized
func AuthenticationMiddleware(
	jwtService authService.JWTService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		tokenString := authHeader[len(bearerPrefix):]
		if tokenString == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		token, err := jwtService.Parse(tokenString)
		if err != nil {
			logger.Debug("authentication failed",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithAccessToken(c.Request.Context(), token)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("user_id", token.UserID.String()),
			slog.String("role", token.Role))

		c.Next()
	}
}

// RevocationMiddleware rejects access tokens whose jti is in the revocation
// registry. A signed token is cryptographically valid until its exp claim;
// this gate is what makes logout, role changes, and account deletion take
// effect before that.
//
// MUST be used after AuthenticationMiddleware. Requests without validated
// claims in context pass through unchanged, so the gate can wrap route groups
// that mix public and authenticated endpoints.
//
// Error handling:
//   - jti present in the registry → 401 Unauthorized
//   - Registry lookup failure → 500 Internal Server Error
func RevocationMiddleware(
	revocationService authService.RevocationService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := GetAccessToken(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		reason, revoked, err := revocationService.IsRevoked(c.Request.Context(), token.JTI)
		if err != nil {
			logger.Error("revocation check failed",
				slog.String("jti", token.JTI.String()),
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		if revoked {
			logger.Debug("revoked token rejected",
				slog.String("jti", token.JTI.String()),
				slog.String("user_id", token.UserID.String()),
				slog.String("reason", reason))
			httputil.HandleErrorGin(c, authDomain.ErrTokenRevoked, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthorizationMiddleware requires the authenticated role to carry a specific
// claim value, resolved through the role-claims cache.
//
// MUST be used after AuthenticationMiddleware.
//
// Error handling:
//   - No validated claims in context → 401 Unauthorized
//   - Role outside the known set, or claim missing → 403 Forbidden
//   - Claims lookup failure → 500 Internal Server Error
func AuthorizationMiddleware(
	requiredClaim string,
	roleClaimsService authService.RoleClaimsService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := GetAccessToken(c.Request.Context())
		if !ok {
			logger.Debug("authorization failed: no validated claims in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		role, err := identityDomain.ParseRoleType(token.Role)
		if err != nil {
			logger.Debug("authorization failed: unknown role claim",
				slog.String("role", token.Role),
				slog.String("user_id", token.UserID.String()))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		claims, err := roleClaimsService.GetClaims(c.Request.Context(), role)
		if err != nil {
			logger.Error("authorization failed: claims lookup error",
				slog.String("role", role.String()),
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		if !slices.Contains(claims, requiredClaim) {
			logger.Debug("authorization failed: insufficient permissions",
				slog.String("role", role.String()),
				slog.String("user_id", token.UserID.String()),
				slog.String("required_claim", requiredClaim))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
