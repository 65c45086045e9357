package identity

import (
	"context"
	"errors"

	"github.com/atelier/backend/internal/domain/identity"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/auth"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid email or password")

// AuthService handles registration and the session token lifecycle
type AuthService struct {
	users     identity.UserRepository
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users identity.UserRepository,
	tokens *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
		logger:    logger,
	}
}

// Register creates a DESIGNER or CLIENT account and signs it in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if input.Role == "" {
		input.Role = identity.RoleDesigner
	}
	if input.Role != identity.RoleDesigner && input.Role != identity.RoleClient {
		return nil, shared.NewValidationError("Role must be DESIGNER or CLIENT")
	}

	user, err := identity.NewUser(input.Email, input.Name, input.Password, input.Role)
	if err != nil {
		return nil, err
	}
	exists, err := s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "An account with this email already exists")
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return s.issue(user)
}

// Login checks credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	log := logger.Enrich(ctx, s.logger)
	email := identity.NormalizeEmail(input.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("Login for unknown email", zap.String("email", email))
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(input.Password) {
		log.Warn("Login with wrong password", zap.String("user_id", user.ID.String()))
		return nil, errInvalidCredentials
	}

	user.RecordLogin()
	if err := s.users.Update(ctx, user); err != nil {
		// a failed stamp must not block the login
		log.Warn("Failed to record login", zap.Error(err))
	}

	log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Refresh rotates a refresh token: the presented one is revoked and a new pair issued.
// The user is reloaded so a changed role takes effect.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, shared.WrapDomainError(shared.CodeUnauthorized, "Invalid refresh token", err)
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, shared.WrapDomainError(shared.CodeUnauthorized, "Refresh token has been revoked", auth.ErrTokenBlacklisted)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.WrapDomainError(shared.CodeUnauthorized, "Invalid refresh token", err)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeUnauthorized, "Account no longer exists")
		}
		return nil, err
	}

	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Logout revokes the access token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return shared.WrapDomainError(shared.CodeUnauthorized, "Invalid access token", err)
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return err
	}
	logger.Enrich(ctx, s.logger).Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// Me returns the session user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

// EnsureAdmin creates the bootstrap ADMIN account unless the email is taken.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	if name == "" {
		name = "Administrator"
	}
	exists, err := s.users.ExistsByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	user, err := identity.NewUser(email, name, password, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return false, err
	}
	s.logger.Info("Bootstrap admin created", zap.String("email", user.Email))
	return true, nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	pair, err := s.tokens.GenerateTokenPair(auth.Subject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserInfo(user),
	}, nil
}
