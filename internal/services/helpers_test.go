package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/isdelr/taskhub-be/internal/auth"
	"github.com/isdelr/taskhub-be/internal/config"
	"github.com/isdelr/taskhub-be/internal/database"
	"github.com/isdelr/taskhub-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(config.DatabaseConfig{Type: "sqlite", Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestHasher(t *testing.T) *auth.Hasher {
	t.Helper()
	h, err := auth.NewHasher(auth.AlgorithmBcrypt, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	return h
}

func createUser(t *testing.T, svc *UserService, email, password string) models.User {
	t.Helper()
	u, err := svc.Create(context.Background(), models.User{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Age:       36,
		Email:     email,
		Password:  password,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// resetState reads the stored reset token pair for a user.
func resetState(t *testing.T, db *database.DB, userID string) (sql.NullString, sql.NullInt64) {
	t.Helper()
	var token sql.NullString
	var expires sql.NullInt64
	err := db.QueryRowContext(context.Background(),
		"SELECT reset_password_token, reset_password_expires FROM users WHERE id = ?", userID).Scan(&token, &expires)
	if err != nil {
		t.Fatalf("read reset state: %v", err)
	}
	return token, expires
}
