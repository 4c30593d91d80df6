package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// fallbackRevocationTTL is used when the stored entry has no TTL left to copy
const fallbackRevocationTTL = 30 * 24 * time.Hour

// RedisRepository handles refresh token registration in Redis
type RedisRepository struct {
	client redis.UniversalClient
}

func NewRedisRepository(client redis.UniversalClient) *RedisRepository {
	return &RedisRepository{client: client}
}

// getTokenKey generates the Redis key for a refresh token
func getTokenKey(tokenID string) string {
	return fmt.Sprintf("refresh_token:%s", tokenID)
}

// getRevokedKey generates the Redis key for a revoked token marker
func getRevokedKey(tokenID string) string {
	return fmt.Sprintf("refresh_token:revoked:%s", tokenID)
}

// getUserTokensKey generates the Redis key for user's token set
func getUserTokensKey(userID uuid.UUID) string {
	return fmt.Sprintf("user_tokens:%s", userID.String())
}

// StoreRefreshToken registers a refresh token as outstanding until expiresAt
func (r *RedisRepository) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenID string, expiresAt time.Time) error {
	tokenKey := getTokenKey(tokenID)
	userTokensKey := getUserTokensKey(userID)

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("token expiration time is in the past")
	}

	pipe := r.client.TxPipeline()

	pipe.HSet(ctx, tokenKey, map[string]any{
		"user_id":    userID.String(),
		"expires_at": expiresAt.Unix(),
		"created_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, tokenKey, ttl)

	// The set lives as long as the newest token in it
	pipe.SAdd(ctx, userTokensKey, tokenID)
	pipe.Expire(ctx, userTokensKey, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return nil
}

// GetRefreshToken retrieves a registered refresh token by jti
func (r *RedisRepository) GetRefreshToken(ctx context.Context, tokenID string) (*RefreshToken, error) {
	revoked, err := r.client.Exists(ctx, getRevokedKey(tokenID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked > 0 {
		return nil, ErrRefreshTokenRevoked
	}

	data, err := r.client.HGetAll(ctx, getTokenKey(tokenID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrRefreshTokenNotFound
	}

	userID, err := uuid.Parse(data["user_id"])
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAtUnix, err := strconv.ParseInt(data["expires_at"], 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	expiresAt := time.Unix(expiresAtUnix, 0)
	if time.Now().After(expiresAt) {
		return nil, ErrRefreshTokenExpired
	}

	createdAtUnix, _ := strconv.ParseInt(data["created_at"], 10, 64)

	return &RefreshToken{
		UserID:    userID,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Unix(createdAtUnix, 0),
	}, nil
}

// RevokeRefreshToken blacklists a refresh token for the rest of its lifetime
func (r *RedisRepository) RevokeRefreshToken(ctx context.Context, tokenID string) error {
	tokenKey := getTokenKey(tokenID)

	ttl, err := r.client.TTL(ctx, tokenKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get token TTL: %w", err)
	}
	// -2: the key does not exist
	if ttl == -2 {
		return ErrRefreshTokenNotFound
	}
	if ttl <= 0 {
		ttl = fallbackRevocationTTL
	}

	if err := r.client.Set(ctx, getRevokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// RevokeAllUserTokens revokes all refresh tokens for a user
func (r *RedisRepository) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	userTokensKey := getUserTokensKey(userID)

	tokenIDs, err := r.client.SMembers(ctx, userTokensKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get user tokens: %w", err)
	}
	if len(tokenIDs) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for _, tokenID := range tokenIDs {
		ttl, _ := r.client.TTL(ctx, getTokenKey(tokenID)).Result()
		if ttl == -2 {
			// already expired
			continue
		}
		if ttl <= 0 {
			ttl = fallbackRevocationTTL
		}
		pipe.Set(ctx, getRevokedKey(tokenID), "1", ttl)
	}
	pipe.Del(ctx, userTokensKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke all user tokens: %w", err)
	}

	return nil
}

// CleanupExpiredTokens is a no-op for Redis; entries expire through their TTL
func (r *RedisRepository) CleanupExpiredTokens(ctx context.Context) error {
	return nil
}
