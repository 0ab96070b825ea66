package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Token errors surfaced to clients. They share the UNAUTHORIZED code so the
// HTTP layer answers 401 for all of them.
var (
	ErrTokenExpired    = shared.NewDomainError("UNAUTHORIZED", "Refresh token has expired")
	ErrTokenInvalid    = shared.NewDomainError("UNAUTHORIZED", "Invalid refresh token")
	ErrTokenRevoked    = shared.NewDomainError("UNAUTHORIZED", "Refresh token has been revoked")
	ErrTokenMaxRefresh = shared.NewDomainError("UNAUTHORIZED", "Maximum token refresh count exceeded. Please log in again")
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	roleRepo   identity.RoleRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
		now:        time.Now,
	}
}

// Login authenticates a user by email and password and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown email", zap.String("ip", input.IP))
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := user.Authenticate(input.Password); err != nil {
		s.logger.Warn("Login rejected",
			zap.String("user_id", user.ID.String()),
			zap.String("ip", input.IP),
			zap.Error(err))
		return nil, err
	}

	role, err := s.roleRepo.FindByID(ctx, user.RoleID)
	if err != nil {
		s.logger.Error("Failed to load user role", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, err
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(tokenInput(user, role))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}

	now := s.now().UTC()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		// Login still succeeds; only the bookkeeping is lost.
		s.logger.Error("Failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("ip", input.IP))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  userInfo(user, role),
	}, nil
}

// RefreshToken issues a new token pair. The user is reloaded so the new
// access token carries the current role and permissions.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	tokenPair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, func(userID uuid.UUID) (auth.GenerateTokenInput, error) {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return auth.GenerateTokenInput{}, ErrTokenInvalid
			}
			return auth.GenerateTokenInput{}, err
		}
		if !user.IsActive {
			return auth.GenerateTokenInput{}, identity.ErrUserInactive
		}
		role, err := s.roleRepo.FindByID(ctx, user.RoleID)
		if err != nil {
			return auth.GenerateTokenInput{}, err
		}
		return tokenInput(user, role), nil
	})
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, mapTokenError(err)
	}

	// The old refresh token is single use.
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke used refresh token", zap.Error(err))
	}

	return &RefreshTokenResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout blacklists the access token until it expires, and the refresh
// token when one is supplied
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if err := s.blacklist.Revoke(ctx, input.TokenJTI, input.ExpiresAt.Sub(s.now())); err != nil {
		s.logger.Error("Failed to revoke access token", zap.Error(err))
		return err
	}

	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		switch {
		case err != nil:
			s.logger.Debug("Ignoring unusable refresh token on logout", zap.Error(err))
		case claims.UserID != input.UserID.String():
			s.logger.Warn("Refresh token on logout belongs to another user",
				zap.String("user_id", input.UserID.String()))
		default:
			if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				s.logger.Error("Failed to revoke refresh token", zap.Error(err))
				return err
			}
		}
	}

	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// Me returns the current user's identity with the role's live permissions
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.roleRepo.FindByID(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	info := userInfo(user, role)
	return &info, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			return err
		}
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingUserID):
		return ErrTokenInvalid
	}
	return err
}

func tokenInput(user *identity.User, role *identity.Role) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		UserID:      user.ID,
		Email:       user.Email,
		RoleID:      role.ID,
		Permissions: role.Permissions,
	}
}

func userInfo(user *identity.User, role *identity.Role) UserInfo {
	permissions := role.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return UserInfo{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		RoleID:      role.ID,
		RoleName:    role.Name,
		Permissions: permissions,
		LastLoginAt: user.LastLoginAt,
	}
}
