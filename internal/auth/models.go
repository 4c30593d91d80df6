package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/seeran-grades/seeran-backend/internal/user"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token has been revoked")
	ErrRefreshTokenExpired  = errors.New("refresh token has expired")
)

// AuthTokens is the token pair issued at login
type AuthTokens struct {
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	Role         user.Role `json:"role"`
	ExpiresIn    int64     `json:"expires_in"`
}

// RefreshToken is a registered refresh token, identified by its jti
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenID   string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// IsExpired checks if the refresh token has expired
func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// IsRevoked checks if the refresh token has been revoked
func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

// IsValid checks if the refresh token is still usable
func (rt *RefreshToken) IsValid() bool {
	return !rt.IsExpired() && !rt.IsRevoked()
}
