package service

import (
	"context"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestRegisterDefaultsToUserRole(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), 4, nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("role = %q, want USER default", user.Role)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased alice@example.com", user.Email)
	}
	if user.PasswordHash == "password123" {
		t.Error("password stored in plaintext")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	users.addUser("Alice", "alice@example.com", "pw", domain.RoleUser)
	svc := NewUserService(users, 4, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Other Alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	if !apperrors.IsCode(err, "CONFLICT") {
		t.Errorf("Register() error = %v, want CONFLICT", err)
	}
}

func TestRegisterUnknownRole(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), 4, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Eve",
		Email:    "eve@example.com",
		Password: "password123",
		Role:     domain.Role("ADMIN"),
	})
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Errorf("Register() error = %v, want VALIDATION_FAILED", err)
	}
}

func TestUpdateProfileRehashesPassword(t *testing.T) {
	users := newFakeUserRepo()
	original := users.addUser("Alice", "alice@example.com", "old-password", domain.RoleUser)
	svc := NewUserService(users, 4, nil)

	newPassword := "new-password"
	updated, err := svc.UpdateProfile(context.Background(), "alice@example.com", ProfileUpdateInput{
		Password: &newPassword,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() unexpected error: %v", err)
	}
	if updated.PasswordHash == original.PasswordHash {
		t.Error("password hash unchanged after update")
	}
}

func TestDeleteMissingUser(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), 4, nil)
	if err := svc.Delete(context.Background(), "user-999"); !apperrors.IsNotFound(err) {
		t.Errorf("Delete() error = %v, want NOT_FOUND", err)
	}
}
