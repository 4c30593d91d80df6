package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrWrongKind    = errors.New("token has the wrong type")
)

// PasetoService handles PASETO token creation and validation
// Uses v4.local (symmetric encryption with XChaCha20-Poly1305)
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
	issuer       string
}

func NewPasetoService(symmetricKey []byte, issuer string) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{
		symmetricKey: key,
		issuer:       issuer,
	}, nil
}

// CreateToken generates a new PASETO v4.local token with the given claims and duration
func (s *PasetoService) CreateToken(userID uuid.UUID, email string, kind TokenKind, duration time.Duration) (string, *TokenClaims, error) {
	now := time.Now()
	claims := &TokenClaims{
		TokenID:   uuid.NewString(),
		UserID:    userID.String(),
		Email:     email,
		Kind:      kind,
		IssuedAt:  now,
		ExpiresAt: now.Add(duration),
	}

	token := paseto.NewToken()
	token.SetIssuedAt(claims.IssuedAt)
	token.SetNotBefore(claims.IssuedAt)
	token.SetExpiration(claims.ExpiresAt)
	token.SetJti(claims.TokenID)
	if s.issuer != "" {
		token.SetIssuer(s.issuer)
	}
	token.SetString("user_id", claims.UserID)
	token.SetString("email", email)
	token.SetString("token_type", string(kind))

	return token.V4Encrypt(s.symmetricKey, nil), claims, nil
}

// VerifyToken validates a PASETO v4.local token of the given kind and returns the claims
func (s *PasetoService) VerifyToken(tokenStr string, kind TokenKind) (*TokenClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	if s.issuer != "" {
		parser.AddRule(paseto.IssuedBy(s.issuer))
	}

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}
	if time.Now().After(expiresAt) {
		return nil, ErrExpiredToken
	}

	claims := &TokenClaims{ExpiresAt: expiresAt}

	if claims.TokenID, err = token.GetJti(); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.UserID, err = token.GetString("user_id"); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Email, err = token.GetString("email"); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.IssuedAt, err = token.GetIssuedAt(); err != nil {
		return nil, ErrInvalidToken
	}

	tokenType, err := token.GetString("token_type")
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims.Kind = TokenKind(tokenType)
	if claims.Kind != kind {
		return nil, ErrWrongKind
	}

	return claims, nil
}
