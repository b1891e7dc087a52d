package service

import (
	"context"
	"errors"
	"fmt"

	"tasktracker/internal/metrics"
	"tasktracker/internal/models"
	"tasktracker/internal/policy"
	"tasktracker/internal/repository"
	"tasktracker/internal/session"
	"tasktracker/pkg/crypto"
)

// SessionStore persists session bindings addressed by an opaque token. Lookup
// reports session.ErrNoSession for tokens without a live binding.
type SessionStore interface {
	Create(ctx context.Context, userID int) (string, error)
	Lookup(ctx context.Context, token string) (int, error)
	Delete(ctx context.Context, token string) error
}

type AuthService struct {
	users    repository.UserRepository
	sessions SessionStore
}

func NewAuthService(users repository.UserRepository, sessions SessionStore) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// Register creates a user with role "user". Duplicate usernames and emails fail
// with ErrDuplicateIdentity; the store's unique index covers concurrent registrations.
func (s *AuthService) Register(ctx context.Context, p models.Principal, username, email, password string) (*models.User, error) {
	if err := authorize(p, policy.ActionRegister); err != nil {
		return nil, err
	}

	if err := s.ensureUnused(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	metrics.RegistrationsTotal.Inc()
	return user, nil
}

func (s *AuthService) ensureUnused(ctx context.Context, username, email string) error {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return fmt.Errorf("username %s: %w", username, models.ErrDuplicateIdentity)
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return fmt.Errorf("email: %w", models.ErrDuplicateIdentity)
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}
	return nil
}

// Authenticate returns ErrInvalidCredentials for an unknown email and for a wrong
// password alike.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (models.Principal, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		crypto.BurnCompare(password)
		metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
		return models.Anonymous, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.Anonymous, err
	}

	if !crypto.CheckPassword(user.PasswordHash, password) {
		metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
		return models.Anonymous, models.ErrInvalidCredentials
	}

	metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
	return models.PrincipalOf(user), nil
}

// EstablishSession binds p to a new session and returns its token.
func (s *AuthService) EstablishSession(ctx context.Context, p models.Principal) (string, error) {
	if !p.IsAuthenticated() {
		return "", fmt.Errorf("establish session for anonymous principal: %w", models.ErrForbidden)
	}
	return s.sessions.Create(ctx, p.UserID)
}

func (s *AuthService) EndSession(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// CurrentPrincipal resolves token to its principal, reloading the user so role
// changes apply on the next request. A token with no live binding, or whose user
// is gone, yields Anonymous and a nil error. Store failures yield Anonymous and
// the error, so the caller can keep the session for a later request.
func (s *AuthService) CurrentPrincipal(ctx context.Context, token string) (models.Principal, error) {
	if token == "" {
		return models.Anonymous, nil
	}
	userID, err := s.sessions.Lookup(ctx, token)
	if errors.Is(err, session.ErrNoSession) {
		return models.Anonymous, nil
	}
	if err != nil {
		return models.Anonymous, fmt.Errorf("resolve session: %w", err)
	}
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return models.Anonymous, nil
	}
	if err != nil {
		return models.Anonymous, fmt.Errorf("load session user: %w", err)
	}
	return models.PrincipalOf(user), nil
}
