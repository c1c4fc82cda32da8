package service

import (
	"context"
	stderrors "errors"
	"strings"

	"go.uber.org/zap"

	"netclass-console/internal/auth"
	"netclass-console/internal/repository"
	"netclass-console/pkg/errors"
)

const invalidCredentials = "Invalid username or password"

// AuthService signs admins in and resolves session tokens
type AuthService struct {
	store    repository.Store
	sessions auth.SessionStore
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store repository.Store, sessions auth.SessionStore, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{store: store, sessions: sessions, logger: logger}
}

// Login verifies the credentials against the stored hash and opens a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*auth.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.UnauthorizedError(invalidCredentials)
	}

	admin, err := s.store.GetAdminByUsername(ctx, username)
	if err != nil {
		if stderrors.Is(err, repository.ErrAdminNotFound) {
			s.logger.Warn("Login failed: unknown user", zap.String("username", username))
			return nil, errors.UnauthorizedError(invalidCredentials)
		}
		return nil, storeError(err, "load admin")
	}

	ok, err := auth.VerifyPassword(password, admin.PasswordHash)
	if err != nil {
		s.logger.Error("Stored password hash is unusable", zap.String("username", username), zap.Error(err))
		return nil, errors.UnauthorizedError(invalidCredentials)
	}
	if !ok {
		s.logger.Warn("Login failed: wrong password", zap.String("username", username))
		return nil, errors.UnauthorizedError(invalidCredentials)
	}

	session, err := s.sessions.Create(ctx, admin.ID, admin.Name)
	if err != nil {
		return nil, errors.InternalError("failed to create session", err)
	}

	s.logger.Info("Admin signed in", zap.Int("admin_id", admin.ID), zap.String("username", username))
	return session, nil
}

// Authenticate resolves a session token to the signed-in admin.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	if token == "" {
		return auth.Identity{}, errors.UnauthorizedError("Login required")
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if stderrors.Is(err, auth.ErrSessionNotFound) {
			return auth.Identity{}, errors.UnauthorizedError("Session expired")
		}
		return auth.Identity{}, errors.InternalError("failed to load session", err)
	}

	return auth.Identity{AdminID: session.AdminID, AdminName: session.AdminName}, nil
}

// Logout ends a session. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return errors.InternalError("failed to end session", err)
	}
	return nil
}
