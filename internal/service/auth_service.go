package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthService coordinates the login flow.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	limiter  LoginLimiter
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, limiter LoginLimiter) *AuthService {
	return &AuthService{
		users:    users,
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		limiter:  limiter,
	}
}

// Login authenticates by email and password and issues a session token.
// Unknown email and password mismatch both surface the same
// invalid-credentials error so account existence is never revealed.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	if s.limiter != nil && s.limiter.TooManyFailures(ctx, email) {
		return "", time.Time{}, apperrors.NewUnauthorized("too many failed login attempts")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.recordFailure(ctx, email)
			return "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return "", time.Time{}, apperrors.MapError(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.recordFailure(ctx, email)
		return "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.Email, user.Role)
	if err != nil {
		return "", time.Time{}, apperrors.MapError(err)
	}
	if s.limiter != nil {
		s.limiter.Reset(ctx, email)
	}
	return token, exp, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.limiter != nil {
		s.limiter.RecordFailure(ctx, email)
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
