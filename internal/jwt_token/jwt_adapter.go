package jwttoken

import (
	"biogate/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *ServiceTokenClaims) *auth.JWTClaims {
	return &auth.JWTClaims{
		Caller: claims.Subject,
		Scopes: claims.Scope,
		JTI:    claims.ID,
	}
}

// JWTServiceAdapter exposes JWTService as an auth.JWTValidator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*auth.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
