// Package auth issues and validates tokens for the administrative API.
// Chat clients authenticate over the wire protocol instead; this package is
// only about protecting the out-of-band control plane.
package auth

import (
	"crypto/subtle"
	"errors"
)

// ErrInvalidCredentials is returned when the admin password doesn't match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service provides admin authentication operations.
type Service struct {
	adminPassword string
	jwtConfig     *JWTConfig
}

// NewService creates a new admin authentication service.
func NewService(adminPassword string, jwtConfig *JWTConfig) *Service {
	return &Service{
		adminPassword: adminPassword,
		jwtConfig:     jwtConfig,
	}
}

// Login validates the admin password and returns a JWT token.
func (s *Service) Login(password string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) != 1 {
		return "", ErrInvalidCredentials
	}
	return GenerateToken(s.jwtConfig, "admin")
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}
