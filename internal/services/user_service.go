package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/taskhub-be/internal/database"
	"github.com/isdelr/taskhub-be/internal/models"
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) (bool, error)
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	RecordServiceProvider[models.User]
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	SetResetToken(ctx context.Context, userID, token string, expires time.Time) error
	RedeemResetToken(ctx context.Context, token, passwordHash string, now time.Time) (bool, error)
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// UserService provides business logic for user management.
type UserService struct {
	*RecordService[models.User, *models.User]
	db *database.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *database.DB, hasher PasswordHasher) *UserService {
	return &UserService{
		RecordService: NewRecordService[models.User](db, userSchema(hasher)),
		db:            db,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// userSchema covers the profile columns. The reset token pair is only written by the dedicated methods below.
func userSchema(hasher PasswordHasher) Schema[models.User] {
	return Schema[models.User]{
		Table:   "users",
		Columns: []string{"first_name", "last_name", "age", "email", "password_hash"},
		Fields: map[string]string{
			"email":     "email",
			"firstName": "first_name",
			"lastName":  "last_name",
			"age":       "age",
		},
		Values: func(u *models.User) []any {
			return []any{u.FirstName, u.LastName, u.Age, u.Email, u.PasswordHash}
		},
		Targets: func(u *models.User) []any {
			return []any{&u.FirstName, &u.LastName, &u.Age, &u.Email, &u.PasswordHash}
		},
		Prepare: func(u *models.User, isNew bool) error {
			u.Email = normalizeEmail(u.Email)
			if err := validateStruct(u); err != nil {
				return err
			}
			if u.Password == "" {
				if isNew {
					return invalid("password is required")
				}
				return nil
			}
			hash, err := hasher.Hash(u.Password)
			if err != nil {
				return err
			}
			u.PasswordHash = hash
			u.Password = ""
			return nil
		},
		Conflict: "email is already registered",
	}
}

// FindByEmail returns the user with the given email, or nil when none exists.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.FindOne(ctx, Filter{"email": normalizeEmail(email)})
}

// SetResetToken stores a reset token for the user, replacing any previous one.
func (s *UserService) SetResetToken(ctx context.Context, userID, token string, expires time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET reset_password_token = ?, reset_password_expires = ?, updated_at = ? WHERE id = ?",
		token, expires.UnixMilli(), time.Now().UTC().Truncate(time.Microsecond), userID)
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RedeemResetToken sets a new password hash and clears the token in a single
// conditional update. It reports false when the token is unknown or expired.
// Concurrent redemptions of one token cannot both succeed.
func (s *UserService) RedeemResetToken(ctx context.Context, token, passwordHash string, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users
		SET password_hash = ?, reset_password_token = NULL, reset_password_expires = NULL, updated_at = ?
		WHERE reset_password_token = ? AND reset_password_expires > ?`,
		passwordHash, now.UTC().Truncate(time.Microsecond), token, now.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("failed to redeem reset token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClearExpiredResetTokens removes reset tokens whose expiry is not after now.
func (s *UserService) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET reset_password_token = NULL, reset_password_expires = NULL
		WHERE reset_password_expires IS NOT NULL AND reset_password_expires <= ?`,
		now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %w", err)
	}
	return res.RowsAffected()
}
