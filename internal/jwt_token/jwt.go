// Package jwttoken issues and validates HS256 service tokens for callers of
// the biometric API.
package jwttoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "biogate/pkg/domain-errors"
	"biogate/pkg/requestcontext"
)

// Scopes granted to service tokens.
const (
	ScopeEnroll = "biometric:enroll"
	ScopeVerify = "biometric:verify"
	ScopeManage = "biometric:manage"
)

// AllScopes is what tokengen grants when no scopes are given.
var AllScopes = []string{ScopeEnroll, ScopeVerify, ScopeManage}

// ServiceTokenClaims are the claims carried by a service token. The subject is
// the calling service.
type ServiceTokenClaims struct {
	Scope []string `json:"scope"`
	Env   string   `json:"env,omitempty"`
	jwt.RegisteredClaims
}

// HasScope reports whether the token grants scope.
func (c *ServiceTokenClaims) HasScope(scope string) bool {
	return slices.Contains(c.Scope, scope)
}

// JWTService handles service token creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	tokenTTL   time.Duration
	env        string
}

func NewJWTService(signingKey, issuer, audience string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		tokenTTL:   tokenTTL,
	}
}

// SetEnv annotates issued tokens with an environment string (e.g., "dev").
func (s *JWTService) SetEnv(env string) {
	s.env = env
}

// GenerateServiceToken signs a token for caller. It returns the token and its JTI.
func (s *JWTService) GenerateServiceToken(ctx context.Context, caller string, scopes []string) (string, string, error) {
	if caller == "" {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "caller cannot be empty")
	}
	if len(scopes) == 0 {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "scopes cannot be empty")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	jti := hex.EncodeToString(b)
	now := requestcontext.Now(ctx)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ServiceTokenClaims{
		Scope: scopes,
		Env:   s.env,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        jti,
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*ServiceTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &ServiceTokenClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*ServiceTokenClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no subject")
	}
	return claims, nil
}
