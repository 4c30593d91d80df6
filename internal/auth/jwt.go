package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type jwtClaims struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	TokenType TokenKind `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies HS256 JSON Web Tokens
type JWTService struct {
	secret []byte
	issuer string
}

func NewJWTService(secret []byte, issuer string) (*JWTService, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 bytes, got %d", len(secret))
	}
	return &JWTService{secret: secret, issuer: issuer}, nil
}

// CreateToken signs a token of the given kind valid for duration
func (s *JWTService) CreateToken(userID uuid.UUID, email string, kind TokenKind, duration time.Duration) (string, *TokenClaims, error) {
	now := time.Now().UTC()
	tokenID := uuid.NewString()

	claims := jwtClaims{
		UserID:    userID.String(),
		Email:     email,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, &TokenClaims{
		TokenID:   tokenID,
		UserID:    claims.UserID,
		Email:     email,
		Kind:      kind,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// VerifyToken checks signature, expiry and kind and returns the claims
func (s *JWTService) VerifyToken(tokenStr string, kind TokenKind) (*TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &jwtClaims{}, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != kind {
		return nil, ErrWrongKind
	}
	if claims.ID == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		TokenID:   claims.ID,
		UserID:    claims.UserID,
		Email:     claims.Email,
		Kind:      claims.TokenType,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
