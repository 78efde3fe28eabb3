package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/taskhub-be/internal/models"
)

func TestUserService_CreateHashesPassword(t *testing.T) {
	db := newTestDB(t)
	hasher := newTestHasher(t)
	svc := NewUserService(db, hasher)

	u := createUser(t, svc, "  Ada@Example.COM ", "s3cret")
	if u.Email != "ada@example.com" {
		t.Errorf("Email = %q, want normalized", u.Email)
	}
	if u.Password != "" {
		t.Error("plaintext password returned from Create")
	}

	stored, err := svc.FindByEmail(context.Background(), "ADA@example.com")
	if err != nil || stored == nil {
		t.Fatalf("FindByEmail() = %v, %v", stored, err)
	}
	if stored.PasswordHash == "s3cret" || stored.PasswordHash == "" {
		t.Fatalf("PasswordHash = %q, want a hash", stored.PasswordHash)
	}
	if ok, _ := hasher.Compare("s3cret", stored.PasswordHash); !ok {
		t.Error("stored hash does not verify")
	}
}

func TestUserService_CreateValidation(t *testing.T) {
	svc := NewUserService(newTestDB(t), newTestHasher(t))
	ctx := context.Background()
	createUser(t, svc, "taken@example.com", "pw")

	tests := []struct {
		name    string
		user    models.User
		wantMsg string
	}{
		{name: "missing password", user: models.User{FirstName: "A", LastName: "B", Age: 20, Email: "a@example.com"}, wantMsg: "password is required"},
		{name: "too young", user: models.User{FirstName: "A", LastName: "B", Age: 12, Email: "a@example.com", Password: "pw"}, wantMsg: "age must be at least 13"},
		{name: "bad email", user: models.User{FirstName: "A", LastName: "B", Age: 20, Email: "nope", Password: "pw"}, wantMsg: "email must be a valid email"},
		{name: "missing names", user: models.User{Age: 20, Email: "a@example.com", Password: "pw"}, wantMsg: "firstName is required"},
		{name: "duplicate email", user: models.User{FirstName: "A", LastName: "B", Age: 20, Email: "TAKEN@example.com", Password: "pw"}, wantMsg: "email is already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.user)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Create() error = %v, want *ValidationError", err)
			}
			if !strings.Contains(verr.Message, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", verr.Message, tt.wantMsg)
			}
		})
	}
}

func TestUserService_UpdatePassword(t *testing.T) {
	hasher := newTestHasher(t)
	svc := NewUserService(newTestDB(t), hasher)
	ctx := context.Background()
	u := createUser(t, svc, "ada@example.com", "old")

	if _, err := svc.Update(ctx, u.ID, func(rec *models.User) error {
		rec.FirstName = "Augusta"
		return nil
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	stored, _ := svc.FindByEmail(ctx, "ada@example.com")
	if ok, _ := hasher.Compare("old", stored.PasswordHash); !ok {
		t.Fatal("profile update must keep the existing password")
	}
	if stored.FirstName != "Augusta" {
		t.Errorf("FirstName = %q", stored.FirstName)
	}

	if _, err := svc.Update(ctx, u.ID, func(rec *models.User) error {
		rec.Password = "new"
		return nil
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	stored, _ = svc.FindByEmail(ctx, "ada@example.com")
	if ok, _ := hasher.Compare("new", stored.PasswordHash); !ok {
		t.Fatal("password update was not hashed and stored")
	}
}

func TestUserService_UpdateDuplicateEmail(t *testing.T) {
	svc := NewUserService(newTestDB(t), newTestHasher(t))
	ctx := context.Background()
	createUser(t, svc, "ada@example.com", "pw")
	grace := createUser(t, svc, "grace@example.com", "pw")

	_, err := svc.Update(ctx, grace.ID, func(rec *models.User) error {
		rec.Email = "ada@example.com"
		return nil
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Message != "email is already registered" {
		t.Fatalf("Update() error = %v, want duplicate email validation error", err)
	}
}

func TestUserService_ResetTokenLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestHasher(t))
	ctx := context.Background()
	u := createUser(t, svc, "ada@example.com", "pw")
	now := time.Now()

	if err := svc.SetResetToken(ctx, u.ID, "tok", now.Add(time.Hour)); err != nil {
		t.Fatalf("SetResetToken() error = %v", err)
	}
	token, expires := resetState(t, db, u.ID)
	if token.String != "tok" || expires.Int64 != now.Add(time.Hour).UnixMilli() {
		t.Fatalf("stored reset state = %v, %v", token, expires)
	}

	if ok, err := svc.RedeemResetToken(ctx, "wrong", "hash", now); err != nil || ok {
		t.Fatalf("RedeemResetToken(wrong) = %v, %v", ok, err)
	}
	if ok, err := svc.RedeemResetToken(ctx, "tok", "hash", now.Add(2*time.Hour)); err != nil || ok {
		t.Fatalf("RedeemResetToken(expired) = %v, %v", ok, err)
	}
	if ok, err := svc.RedeemResetToken(ctx, "tok", "hash", now); err != nil || !ok {
		t.Fatalf("RedeemResetToken(valid) = %v, %v", ok, err)
	}

	token, expires = resetState(t, db, u.ID)
	if token.Valid || expires.Valid {
		t.Errorf("reset state not cleared: %v, %v", token, expires)
	}
	if ok, _ := svc.RedeemResetToken(ctx, "tok", "hash", now); ok {
		t.Error("token redeemed twice")
	}
}

func TestUserService_SetResetTokenUnknownUser(t *testing.T) {
	svc := NewUserService(newTestDB(t), newTestHasher(t))
	err := svc.SetResetToken(context.Background(), "00000000-0000-4000-8000-000000000000", "tok", time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetResetToken() error = %v, want ErrNotFound", err)
	}
}

func TestUserService_ConcurrentRedeemSucceedsOnce(t *testing.T) {
	svc := NewUserService(newTestDB(t), newTestHasher(t))
	ctx := context.Background()
	u := createUser(t, svc, "ada@example.com", "pw")
	now := time.Now()
	if err := svc.SetResetToken(ctx, u.ID, "race", now.Add(time.Hour)); err != nil {
		t.Fatalf("SetResetToken() error = %v", err)
	}

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := svc.RedeemResetToken(ctx, "race", "hash", now)
			if err != nil {
				t.Errorf("RedeemResetToken() error = %v", err)
				return
			}
			if ok {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("successful redemptions = %d, want 1", successes)
	}
}

func TestUserService_ClearExpiredResetTokens(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, newTestHasher(t))
	ctx := context.Background()
	now := time.Now()

	stale := createUser(t, svc, "stale@example.com", "pw")
	fresh := createUser(t, svc, "fresh@example.com", "pw")
	if err := svc.SetResetToken(ctx, stale.ID, "old", now.Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetResetToken(ctx, fresh.ID, "new", now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	n, err := svc.ClearExpiredResetTokens(ctx, now)
	if err != nil {
		t.Fatalf("ClearExpiredResetTokens() error = %v", err)
	}
	if n != 1 {
		t.Errorf("cleared %d tokens, want 1", n)
	}
	if token, _ := resetState(t, db, stale.ID); token.Valid {
		t.Error("expired token was not cleared")
	}
	if token, _ := resetState(t, db, fresh.ID); token.String != "new" {
		t.Error("live token was cleared")
	}
}
