package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/auth"
	"github.com/spec-kit/inventory-service/internal/config"
	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/repository"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

const invalidCredentials = "invalid credentials"

// Session is what login and refresh hand back: a fresh token pair and the
// identity it was issued for.
type Session struct {
	Tokens domain.TokenPair
	User   domain.Identity
}

// AuthService coordinates login, refresh rotation and revocation.
type AuthService struct {
	users      repository.UserRepository
	tokens     repository.RefreshTokenRepository
	tokenMgr   *auth.TokenManager
	guard      *LoginGuard
	refreshTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	LoginGuard       *LoginGuard
	Logger           *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.RefreshTokenRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		guard:      deps.LoginGuard,
		refreshTTL: cfg.Auth.RefreshTokenTTL(),
		logger:     logger,
		now:        time.Now,
	}
}

// Issue signs an access token for identity and stores a new refresh token.
func (s *AuthService) Issue(ctx context.Context, identity domain.Identity) (domain.TokenPair, error) {
	access, accessExp, err := s.tokenMgr.GenerateToken(identity)
	if err != nil {
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}
	raw, hash, err := auth.NewRefreshToken()
	if err != nil {
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}
	record := &domain.RefreshToken{
		TokenHash: hash,
		UserID:    identity.ID,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return domain.TokenPair{}, apperrors.MapError(err)
	}
	return domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     raw,
		RefreshExpiresAt: record.ExpiresAt,
	}, nil
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if err := s.guard.Check(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.guard.Failed(ctx, email)
			return nil, apperrors.NewUnauthorized(invalidCredentials)
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.guard.Failed(ctx, email)
		return nil, apperrors.NewUnauthorized(invalidCredentials)
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	s.guard.Succeeded(ctx, email)

	identity := user.Identity()
	pair, err := s.Issue(ctx, identity)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &Session{Tokens: pair, User: identity}, nil
}

// Refresh exchanges a live refresh token for a new pair and revokes the old
// one. Only one of several concurrent exchanges of the same token succeeds.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*Session, error) {
	if rawToken == "" {
		return nil, apperrors.NewUnauthorized("refresh token required")
	}
	hash := auth.HashRefreshToken(rawToken)

	record, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, apperrors.MapError(err)
	}
	if record.IsRevoked {
		return nil, apperrors.NewUnauthorized("refresh token revoked")
	}
	if !record.ExpiresAt.After(s.now()) {
		return nil, apperrors.NewUnauthorized("refresh token expired")
	}

	flipped, err := s.tokens.Revoke(ctx, hash)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !flipped {
		return nil, apperrors.NewUnauthorized("refresh token revoked")
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized("account disabled")
	}

	identity := user.Identity()
	pair, err := s.Issue(ctx, identity)
	if err != nil {
		return nil, err
	}
	return &Session{Tokens: pair, User: identity}, nil
}

// Revoke marks the refresh token revoked. Unknown or already revoked tokens
// are not an error.
func (s *AuthService) Revoke(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	if _, err := s.tokens.Revoke(ctx, auth.HashRefreshToken(rawToken)); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Logout revokes the caller's refresh token.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	return s.Revoke(ctx, rawToken)
}

// RevokeAllForUser ends every session the user holds.
func (s *AuthService) RevokeAllForUser(ctx context.Context, userID string) error {
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
