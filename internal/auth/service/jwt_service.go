package service

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/allisson/sessions/internal/auth/domain"
	apperrors "github.com/allisson/sessions/internal/errors"
)

// signingMethod is the only algorithm accepted for access tokens. Tokens
// whose header claims anything else are rejected before signature checks.
var signingMethod = jwt.SigningMethodHS256

// envelopeClaimKeys are the payload keys owned by the token envelope. Any
// other key carrying the value "true" is read back as a permission claim.
var envelopeClaimKeys = map[string]struct{}{
	"userid": {}, "role": {}, "sub": {}, "iss": {}, "aud": {},
	"jti": {}, "iat": {}, "exp": {}, "nbf": {},
}

// accessClaims is the wire shape of an access token payload. Permission
// claims are flattened into the payload at marshal time, one entry per
// permission string with value "true".
type accessClaims struct {
	UserID string   `json:"userid"`
	Role   string   `json:"role"`
	Claims []string `json:"-"`
	jwt.RegisteredClaims
}

// MarshalJSON writes the envelope claims plus one "<permission>": "true"
// entry per permission claim. A permission colliding with an envelope key
// is skipped rather than allowed to overwrite it.
func (c accessClaims) MarshalJSON() ([]byte, error) {
	type plain accessClaims
	raw, err := json.Marshal(plain(c))
	if err != nil {
		return nil, err
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	for _, permission := range c.Claims {
		if _, taken := payload[permission]; taken {
			continue
		}
		payload[permission] = json.RawMessage(`"true"`)
	}

	return json.Marshal(payload)
}

// UnmarshalJSON reads the envelope claims and collects every non-envelope
// key with value "true" back into Claims, sorted for deterministic output.
func (c *accessClaims) UnmarshalJSON(data []byte) error {
	type plain accessClaims
	if err := json.Unmarshal(data, (*plain)(c)); err != nil {
		return err
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	for key, value := range payload {
		if _, envelope := envelopeClaimKeys[key]; envelope {
			continue
		}
		if string(value) == `"true"` {
			c.Claims = append(c.Claims, key)
		}
	}
	slices.Sort(c.Claims)

	return nil
}

// JWTConfig holds the signing parameters for access tokens.
type JWTConfig struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	TTL        time.Duration
}

// jwtService implements JWTService using HMAC-SHA256 signatures.
type jwtService struct {
	config JWTConfig
	now    func() time.Time
}

// Issue signs a new access token for the given subject with a fresh jti.
// The permission claims resolved for the subject's role ride inside the
// payload, one claim per permission string.
func (s *jwtService) Issue(email string, userID uuid.UUID, role string, permissions []string) (string, uuid.UUID, error) {
	now := s.now()
	jti := uuid.New()

	claims := accessClaims{
		UserID: userID.String(),
		Role:   role,
		Claims: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    s.config.Issuer,
			Audience:  jwt.ClaimStrings{s.config.Audience},
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
		},
	}

	token, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.config.SigningKey)
	if err != nil {
		return "", uuid.Nil, apperrors.Wrap(err, "failed to sign access token")
	}

	return token, jti, nil
}

// Parse validates a token in full. Any failure collapses into ErrInvalidToken.
func (s *jwtService) Parse(tokenString string) (*AccessToken, error) {
	claims := &accessClaims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		s.keyFunc,
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithAudience(s.config.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}

	return s.toAccessToken(claims)
}

// ParseExpired validates signature, algorithm, issuer, and audience, but not
// the lifetime. The refresh flow hands in access tokens that are usually past
// their exp claim.
func (s *jwtService) ParseExpired(tokenString string) (*AccessToken, error) {
	claims := &accessClaims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		s.keyFunc,
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}

	// Claims validation was skipped above, so issuer and audience are
	// checked by hand. Only the lifetime is deliberately ignored.
	if claims.Issuer != s.config.Issuer {
		return nil, authDomain.ErrInvalidToken
	}

	audienceMatch := false
	for _, aud := range claims.Audience {
		if aud == s.config.Audience {
			audienceMatch = true
			break
		}
	}
	if !audienceMatch {
		return nil, authDomain.ErrInvalidToken
	}

	return s.toAccessToken(claims)
}

// keyFunc returns the shared signing key. The algorithm check happens via
// jwt.WithValidMethods; this double-checks the method family.
func (s *jwtService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, authDomain.ErrInvalidToken
	}
	return s.config.SigningKey, nil
}

// toAccessToken converts validated claims into the domain shape, rejecting
// tokens whose custom claims are missing or malformed.
func (s *jwtService) toAccessToken(claims *accessClaims) (*AccessToken, error) {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}

	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}

	if claims.Subject == "" || claims.Role == "" {
		return nil, authDomain.ErrInvalidToken
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &AccessToken{
		Email:     claims.Subject,
		UserID:    userID,
		Role:      claims.Role,
		Claims:    claims.Claims,
		JTI:       jti,
		ExpiresAt: expiresAt,
	}, nil
}

// JWTServiceOption configures a jwtService.
type JWTServiceOption func(*jwtService)

// WithJWTClock overrides the time source, used by tests to control expiry.
func WithJWTClock(now func() time.Time) JWTServiceOption {
	return func(s *jwtService) {
		s.now = now
	}
}

// NewJWTService creates a new JWTService using HMAC-SHA256 signatures.
func NewJWTService(config JWTConfig, opts ...JWTServiceOption) JWTService {
	s := &jwtService{
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}
