package jwttoken

import (
	"civiclink/internal/platform/middleware"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
)

// JWTServiceAdapter exposes JWTService as a middleware.TokenValidator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	return &middleware.TokenClaims{UserID: userID, Role: claims.Role, JTI: claims.ID}, nil
}
