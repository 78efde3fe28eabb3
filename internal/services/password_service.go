package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"github.com/isdelr/taskhub-be/internal/config"
	"github.com/isdelr/taskhub-be/internal/mail"
	"github.com/isdelr/taskhub-be/internal/metrics"
	"github.com/rs/zerolog/log"
)

const resetTokenBytes = 32

// PasswordServiceProvider defines the interface for the password recovery flow.
type PasswordServiceProvider interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// PasswordService issues and redeems single-use password reset tokens.
type PasswordService struct {
	users    UserServiceProvider
	mailer   mail.Sender
	hasher   PasswordHasher
	resetURL string
	tokenTTL time.Duration
	now      func() time.Time
}

// NewPasswordService creates a new PasswordService.
func NewPasswordService(users UserServiceProvider, mailer mail.Sender, hasher PasswordHasher, cfg config.ResetConfig) *PasswordService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PasswordService{
		users:    users,
		mailer:   mailer,
		hasher:   hasher,
		resetURL: cfg.URL,
		tokenTTL: ttl,
		now:      time.Now,
	}
}

// RequestReset stores a fresh token for the user and emails them a link carrying it.
// A previously issued token stops working. If the email cannot be sent the token
// stays stored until it expires or is replaced.
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	if email == "" {
		return invalid("email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	token, err := generateSecureToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	expires := s.now().Add(s.tokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return err
	}

	link, err := s.resetLink(token)
	if err != nil {
		return err
	}
	msg, err := mail.PasswordResetMessage(user.Email, link)
	if err != nil {
		return fmt.Errorf("failed to render recovery email: %w", err)
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.PasswordResetEmailsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to send recovery email: %w", err)
	}
	metrics.PasswordResetEmailsTotal.WithLabelValues("sent").Inc()

	log.Info().Str("user_id", user.ID).Time("expires", expires).Msg("Password reset requested")
	return nil
}

// ResetPassword replaces the password of the user holding token, if it has not expired.
func (s *PasswordService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return invalid("token and password are required")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	ok, err := s.users.RedeemResetToken(ctx, token, hash, s.now())
	if err != nil {
		return err
	}
	if !ok {
		metrics.PasswordResetsTotal.WithLabelValues("rejected").Inc()
		return ErrInvalidResetToken
	}

	metrics.PasswordResetsTotal.WithLabelValues("success").Inc()
	return nil
}

func (s *PasswordService) resetLink(token string) (string, error) {
	u, err := url.Parse(s.resetURL)
	if err != nil {
		return "", fmt.Errorf("invalid reset URL %q: %w", s.resetURL, err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
