package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pixelvault/arttoys-backend/pkg/db"
	"github.com/pixelvault/arttoys-backend/pkg/db/models"
	"github.com/pixelvault/arttoys-backend/pkg/enums"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))

	created, err := repo.Create(context.Background(), &models.User{
		Email:        "buyer@example.com",
		PasswordHash: "hash",
		Name:         "Buyer",
		Role:         enums.UserRoleMember,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}

	byEmail, err := repo.FindByEmail(context.Background(), "buyer@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("expected user %s, got %s", created.ID, byEmail.ID)
	}

	byID, err := repo.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byID.Email != "buyer@example.com" {
		t.Fatalf("unexpected email %q", byID.Email)
	}
}

func TestRepositoryFindMisses(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))

	if _, err := repo.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
	if _, err := repo.FindByID(context.Background(), uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestRepositoryCreateDuplicateEmail(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))

	seed := &models.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Buyer", Role: enums.UserRoleMember}
	if _, err := repo.Create(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := repo.Create(context.Background(), &models.User{
		Email:        "buyer@example.com",
		PasswordHash: "other",
		Name:         "Impostor",
		Role:         enums.UserRoleMember,
	})
	if err == nil {
		t.Fatal("expected duplicate email to fail")
	}
	if !db.IsUniqueViolation(err, "idx_users_email") {
		t.Fatalf("expected unique violation, got %v", err)
	}
}
