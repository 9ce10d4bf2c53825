package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"legal-companion/internal/domain"
	"legal-companion/internal/repository"
)

const legacyEmailDomain = "legacy.local"

// AuthService emite sesiones y resuelve el usuario de un bearer token.
type AuthService struct {
	logger *zap.Logger
	users  repository.UserRepository
	jwt    *JWTService
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, jwtSvc *JWTService) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{logger: logger, users: users, jwt: jwtSvc}
}

// Session es un token de acceso listo para devolver al cliente.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Login valida credenciales. Los usuarios legacy sin email reciben uno
// sintetico y quedan verificados; si ese backfill falla se sigue igual.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	if s.users == nil || s.jwt == nil {
		return Session{}, ErrServiceUnavailable
	}
	username = strings.TrimSpace(username)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("login failed: unknown user", zap.String("username", username))
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		s.logger.Warn("login failed: wrong password", zap.String("username", username))
		return Session{}, ErrInvalidCredentials
	}

	if !user.HasEmail() {
		legacyEmail := user.Username + "@" + legacyEmailDomain
		if err := s.users.UpdateEmail(ctx, user.ID, legacyEmail, true); err != nil {
			s.logger.Warn("legacy email backfill failed", zap.Error(err), zap.String("username", user.Username))
		} else {
			user.Email = legacyEmail
			user.IsVerified = true
			s.logger.Info("legacy user backfilled", zap.String("username", user.Username))
		}
	}
	if !user.IsVerified {
		return Session{}, ErrEmailNotVerified
	}
	return s.issue(user.Username)
}

// Refresh emite un token nuevo para un usuario ya autenticado.
func (s *AuthService) Refresh(user domain.User) (Session, error) {
	if s.jwt == nil {
		return Session{}, ErrServiceUnavailable
	}
	return s.issue(user.Username)
}

// Authenticate resuelve el usuario dueño del token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if s.users == nil || s.jwt == nil {
		return domain.User{}, ErrServiceUnavailable
	}
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.GetByUsername(ctx, claims.Username())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *AuthService) issue(username string) (Session, error) {
	token, expiresAt, err := s.jwt.Issue(username)
	if err != nil {
		return Session{}, err
	}
	return Session{AccessToken: token, ExpiresAt: expiresAt}, nil
}
