package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/seeran-grades/seeran-backend/internal/user"
)

// TokenKind distinguishes access from refresh tokens
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// TokenClaims represents the claims carried by a session token
type TokenClaims struct {
	TokenID   string    `json:"jti"`
	UserID    string    `json:"user_id"` // UUID stored as string in token
	Email     string    `json:"email"`
	Kind      TokenKind `json:"token_type"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService defines the interface for token creation and validation.
// Implementations include JWTService (HS256) and PasetoService (PASETO v4.local).
type TokenService interface {
	CreateToken(userID uuid.UUID, email string, kind TokenKind, duration time.Duration) (string, *TokenClaims, error)
	VerifyToken(tokenStr string, kind TokenKind) (*TokenClaims, error)
}

// UserRepository is the subset of user persistence the auth flows need
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*user.User, error)
	GetByNameSurnameEmail(ctx context.Context, name, surname, email string) (*user.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// EmailSender delivers one-time codes
type EmailSender interface {
	SendOTPEmail(ctx context.Context, toEmail, code string) error
}
