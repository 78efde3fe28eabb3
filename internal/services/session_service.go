package services

import (
	"context"

	"github.com/isdelr/taskhub-be/internal/models"
)

// SessionServiceProvider defines the interface for credential checks.
type SessionServiceProvider interface {
	Login(ctx context.Context, email, password string) (models.User, error)
}

// SessionService verifies user credentials. It issues no tokens.
type SessionService struct {
	users  UserServiceProvider
	hasher PasswordHasher
}

// NewSessionService creates a new SessionService.
func NewSessionService(users UserServiceProvider, hasher PasswordHasher) *SessionService {
	return &SessionService{users: users, hasher: hasher}
}

// Login returns the user whose email and password match.
func (s *SessionService) Login(ctx context.Context, email, password string) (models.User, error) {
	if email == "" || password == "" {
		return models.User{}, invalid("email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if user == nil {
		return models.User{}, ErrUserNotFound
	}

	ok, err := s.hasher.Compare(password, user.PasswordHash)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, ErrIncorrectPassword
	}

	user.PasswordHash = ""
	return *user, nil
}
