package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/acesastra/ace-portal/internal/models"
)

func TestAccountRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	first := &models.Account{Provider: "google", Subject: "sub-1", Email: "12345678@sastra.ac.in", Name: "Alice"}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("Expected ID to be assigned")
	}

	again := &models.Account{Provider: "google", Subject: "sub-1", Email: "12345678@sastra.ac.in", Name: "Alice B"}
	if err := repo.Upsert(ctx, again); err != nil {
		t.Fatalf("second Upsert() failed: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("Expected same account ID, got %s and %s", first.ID, again.ID)
	}

	stored, err := repo.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if stored.Name != "Alice B" {
		t.Errorf("Expected refreshed name, got %q", stored.Name)
	}
}

func TestAccountRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := &models.Account{Provider: "google", Subject: "sub-2", Email: "x@gmail.com"}
	if err := repo.Upsert(ctx, account); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	if err := repo.Delete(ctx, account.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := repo.Delete(ctx, account.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestProfileRepository_CreateAndExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	exists, err := repo.ExistsForUser(ctx, "user-1")
	if err != nil || exists {
		t.Fatalf("ExistsForUser() = %v, %v; want false, nil", exists, err)
	}

	err = repo.CreateViaProcedure(ctx, NewProfile{
		UserID:             "user-1",
		Name:               "Alice",
		RegistrationNumber: "12345678",
		Year:               2023,
		Department:         "Unknown Department",
	})
	if err != nil {
		t.Fatalf("CreateViaProcedure() failed: %v", err)
	}

	exists, err = repo.ExistsForUser(ctx, "user-1")
	if err != nil || !exists {
		t.Fatalf("ExistsForUser() = %v, %v; want true, nil", exists, err)
	}

	profile, err := repo.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByUserID() failed: %v", err)
	}
	if profile.ID != "user-1" {
		t.Errorf("Expected profile ID to equal user ID, got %q", profile.ID)
	}
	if profile.Year != 2023 || profile.RegistrationNumber != "12345678" {
		t.Errorf("Unexpected profile fields: %+v", profile)
	}
	if profile.HasContactNumber() {
		t.Error("Expected new profile without contact number")
	}
}

func TestProfileRepository_UpdateContactNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	profile := createTestProfile(t, db, "alice")

	number := "9876543210"
	if err := repo.UpdateContactNumber(ctx, profile.UserID, &number); err != nil {
		t.Fatalf("UpdateContactNumber() failed: %v", err)
	}
	stored, _ := repo.GetByUserID(ctx, profile.UserID)
	if !stored.HasContactNumber() || *stored.ContactNumber != number {
		t.Errorf("Expected contact %s, got %v", number, stored.ContactNumber)
	}

	if err := repo.UpdateContactNumber(ctx, profile.UserID, nil); err != nil {
		t.Fatalf("clearing contact failed: %v", err)
	}
	stored, _ = repo.GetByUserID(ctx, profile.UserID)
	if stored.ContactNumber != nil {
		t.Errorf("Expected contact to be cleared, got %v", *stored.ContactNumber)
	}

	if err := repo.UpdateContactNumber(ctx, "nobody", &number); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown user, got %v", err)
	}
}
