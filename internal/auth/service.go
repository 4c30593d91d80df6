package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seeran-grades/seeran-backend/internal/logging"
	"github.com/seeran-grades/seeran-backend/internal/metrics"
	"github.com/seeran-grades/seeran-backend/internal/user"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrFieldsRequired      = errors.New("all fields are required")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrIncorrectPassword   = errors.New("previous password is incorrect")
	ErrAccountActivated    = errors.New("account already activated")
	ErrInvalidAccessToken  = errors.New("invalid access token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// Service handles the session lifecycle: login, refresh, logout and password change
type Service struct {
	userRepo             UserRepository
	authRepo             RefreshTokenRepository
	tokens               TokenService
	metrics              *metrics.Metrics
	logger               *logging.Logger
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
	passwordMinChars     int
}

// ServiceConfig holds the session settings
type ServiceConfig struct {
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	PasswordMinChars     int
}

func NewService(
	userRepo UserRepository,
	authRepo RefreshTokenRepository,
	tokens TokenService,
	m *metrics.Metrics,
	logger *logging.Logger,
	cfg ServiceConfig,
) *Service {
	return &Service{
		userRepo:             userRepo,
		authRepo:             authRepo,
		tokens:               tokens,
		metrics:              m,
		logger:               logger,
		accessTokenDuration:  cfg.AccessTokenDuration,
		refreshTokenDuration: cfg.RefreshTokenDuration,
		passwordMinChars:     cfg.PasswordMinChars,
	}
}

// normalizeIdentifier lowercases emails; ID numbers are kept as typed
func normalizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return strings.ToLower(identifier)
	}
	return identifier
}

// Login authenticates a user by email or ID number and returns tokens with the resolved role
func (s *Service) Login(ctx context.Context, identifier, password string) (*AuthTokens, error) {
	tokens, err := s.login(ctx, identifier, password)

	result := "success"
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		result = "invalid_credentials"
	case errors.Is(err, user.ErrNotFound):
		result = "user_missing"
	case err != nil:
		result = "error"
	}
	s.metrics.Logins.WithLabelValues(result).Inc()

	return tokens, err
}

func (s *Service) login(ctx context.Context, identifier, password string) (*AuthTokens, error) {
	identifier = normalizeIdentifier(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existingUser, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !existingUser.HasUsablePassword() || !VerifyPassword(*existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	// The role is read from a fresh row; the account may have been removed meanwhile
	current, err := s.userRepo.GetByID(ctx, existingUser.ID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	tokens, err := s.generateTokens(ctx, current.ID, current.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	tokens.Role = current.Role()

	return tokens, nil
}

// Authenticate validates an access token and returns its claims
func (s *Service) Authenticate(accessToken string) (*TokenClaims, error) {
	if accessToken == "" {
		return nil, ErrInvalidToken
	}
	return s.tokens.VerifyToken(accessToken, KindAccess)
}

// Credentials returns the user an access token belongs to
func (s *Service) Credentials(ctx context.Context, accessToken string) (*user.User, error) {
	claims, err := s.Authenticate(accessToken)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			s.logger.Warn("failed to load user for credentials", "user_id", userID, "error", err)
		}
		return nil, ErrInvalidAccessToken
	}

	return u, nil
}

// AccountStatus returns nil when the account still needs activation.
// Activated accounts yield ErrAccountActivated.
func (s *Service) AccountStatus(ctx context.Context, email string) error {
	email = normalizeIdentifier(email)
	if email == "" {
		return ErrFieldsRequired
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if u.HasUsablePassword() {
		return ErrAccountActivated
	}

	return nil
}

// RefreshAccessToken issues a new access token for a registered refresh token.
// The refresh token itself is not rotated.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	claims, err := s.tokens.VerifyToken(refreshToken, KindRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	rt, err := s.authRepo.GetRefreshToken(ctx, claims.TokenID)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) ||
			errors.Is(err, ErrRefreshTokenRevoked) ||
			errors.Is(err, ErrRefreshTokenExpired) ||
			errors.Is(err, ErrInvalidToken) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	// Registries may hand back a row that lapsed or was revoked after lookup filtering
	if !rt.IsValid() {
		return nil, ErrInvalidRefreshToken
	}

	existingUser, err := s.userRepo.GetByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	accessToken, _, err := s.tokens.CreateToken(existingUser.ID, existingUser.Email, KindAccess, s.accessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &AuthTokens{
		AccessToken: accessToken,
		Role:        existingUser.Role(),
		ExpiresIn:   int64(s.accessTokenDuration.Seconds()),
	}, nil
}

// Logout blacklists the presented refresh token.
// Failures are logged and never returned.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}

	claims, err := s.tokens.VerifyToken(refreshToken, KindRefresh)
	if err != nil {
		return
	}

	if err := s.authRepo.RevokeRefreshToken(ctx, claims.TokenID); err != nil {
		if !errors.Is(err, ErrRefreshTokenNotFound) {
			s.logger.Warn("failed to revoke refresh token on logout", "error", err)
		}
		return
	}
	s.metrics.TokensRevoked.Inc()
}

// ChangePassword replaces the password of an authenticated user and
// invalidates every outstanding refresh token
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, previous, newPassword, confirm string) error {
	if previous == "" || newPassword == "" || confirm == "" {
		return ErrFieldsRequired
	}

	existingUser, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !existingUser.HasUsablePassword() || !VerifyPassword(*existingUser.PasswordHash, previous) {
		return ErrIncorrectPassword
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if err := s.validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.authRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		s.logger.Warn("failed to revoke refresh tokens after password change", "user_id", userID, "error", err)
	}

	return nil
}

func (s *Service) validatePassword(password string) error {
	if len(password) < s.passwordMinChars {
		return ErrPasswordTooShort
	}
	return nil
}

// generateTokens creates both access and refresh tokens and registers the refresh token
func (s *Service) generateTokens(ctx context.Context, userID uuid.UUID, email string) (*AuthTokens, error) {
	accessToken, _, err := s.tokens.CreateToken(userID, email, KindAccess, s.accessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, refreshClaims, err := s.tokens.CreateToken(userID, email, KindRefresh, s.refreshTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	if err := s.authRepo.StoreRefreshToken(ctx, userID, refreshClaims.TokenID, refreshClaims.ExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTokenDuration.Seconds()),
	}, nil
}
