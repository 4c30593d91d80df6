package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenRepository tracks issued refresh tokens by jti so they can be blacklisted
type RefreshTokenRepository interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenID string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenID string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenID string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
	CleanupExpiredTokens(ctx context.Context) error
}
