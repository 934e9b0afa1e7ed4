// Package auth issues and validates access tokens and hashes passwords.
package auth

import (
	"context"
	"time"
)

// JWTService defines operations for managing JWT access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the account.
	GenerateToken(ctx context.Context, accountID string) (string, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// TokenLifetime is how long issued tokens stay valid.
	TokenLifetime() time.Duration
}

// Claims represents the validated contents of an access token.
type Claims struct {
	// AccountID is the account the token was issued for.
	AccountID string

	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
