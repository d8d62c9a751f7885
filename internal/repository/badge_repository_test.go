package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/acesastra/ace-portal/internal/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// Enable foreign key constraints (SQLite default is off)
	db.Exec("PRAGMA foreign_keys = ON")

	wrapped := Wrap(db)
	if err := wrapped.AutoMigrate(); err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}
	return wrapped
}

// createTestProfile creates an account and its profile.
func createTestProfile(t *testing.T, db *DB, name string) *models.UserProfile {
	t.Helper()

	account := &models.Account{Provider: "google", Subject: name, Email: name + "@sastra.ac.in", Name: name}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	profile := &models.UserProfile{
		UserID:             account.ID,
		Name:               name,
		RegistrationNumber: "12345678",
		Department:         "Computer Science and Engineering",
		Year:               2023,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}
	return profile
}

// createTestBadge creates a test badge in the database.
func createTestBadge(t *testing.T, repo *BadgeRepository, name string) *models.Badge {
	t.Helper()

	badge := &models.Badge{
		Name:        name,
		Description: name + " description",
		IconKey:     name + ".png",
		Type:        models.BadgeTypeManual,
	}
	if err := repo.Create(context.Background(), badge); err != nil {
		t.Fatalf("Failed to create test badge: %v", err)
	}
	return badge
}

func TestBadgeRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)

	badge := createTestBadge(t, repo, "First Blood")

	if badge.ID == "" {
		t.Error("Expected badge ID to be set after creation")
	}
}

func TestBadgeRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	created := createTestBadge(t, repo, "Speaker")

	retrieved, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if retrieved.Name != "Speaker" {
		t.Errorf("Expected name 'Speaker', got %q", retrieved.Name)
	}

	_, err = repo.GetByID(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing badge, got %v", err)
	}
}

func TestBadgeRepository_GetAll_OrderedByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)

	createTestBadge(t, repo, "Workshop Regular")
	createTestBadge(t, repo, "Contest Champion")
	createTestBadge(t, repo, "Mentor")

	badges, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() failed: %v", err)
	}
	if len(badges) != 3 {
		t.Fatalf("Expected 3 badges, got %d", len(badges))
	}

	want := []string{"Contest Champion", "Mentor", "Workshop Regular"}
	for i, name := range want {
		if badges[i].Name != name {
			t.Errorf("badges[%d] = %q, want %q", i, badges[i].Name, name)
		}
	}
}

func TestBadgeRepository_UpsertByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	original := createTestBadge(t, repo, "Mentor")

	updated := &models.Badge{Name: "Mentor", Description: "Helps juniors", IconKey: "mentor-v2.png", Type: models.BadgeTypeManual}
	if err := repo.UpsertByName(ctx, updated); err != nil {
		t.Fatalf("UpsertByName() failed: %v", err)
	}

	if updated.ID != original.ID {
		t.Errorf("Expected upsert to keep ID %s, got %s", original.ID, updated.ID)
	}

	badges, _ := repo.GetAll(ctx)
	if len(badges) != 1 {
		t.Fatalf("Expected 1 badge after upsert, got %d", len(badges))
	}
	if badges[0].IconKey != "mentor-v2.png" {
		t.Errorf("Expected icon to be updated, got %q", badges[0].IconKey)
	}
}

func TestBadgeRepository_AwardBadge_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	profile := createTestProfile(t, db, "alice")
	badge := createTestBadge(t, repo, "Speaker")

	earnedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.AwardBadge(ctx, profile.UserID, badge.ID, earnedAt); err != nil {
		t.Fatalf("First AwardBadge() failed: %v", err)
	}
	if err := repo.AwardBadge(ctx, profile.UserID, badge.ID, earnedAt); err != nil {
		t.Fatalf("Second AwardBadge() failed: %v", err)
	}

	count, err := repo.GetBadgeHoldersCount(ctx, badge.ID)
	if err != nil {
		t.Fatalf("GetBadgeHoldersCount() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 holder, got %d", count)
	}
}

func TestBadgeRepository_GetUserBadges(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	profile := createTestProfile(t, db, "alice")
	older := createTestBadge(t, repo, "Speaker")
	newer := createTestBadge(t, repo, "Mentor")

	_ = repo.AwardBadge(ctx, profile.UserID, older.ID, time.Now().Add(-48*time.Hour))
	_ = repo.AwardBadge(ctx, profile.UserID, newer.ID, time.Now())

	userBadges, err := repo.GetUserBadges(ctx, profile.UserID)
	if err != nil {
		t.Fatalf("GetUserBadges() failed: %v", err)
	}
	if len(userBadges) != 2 {
		t.Fatalf("Expected 2 user badges, got %d", len(userBadges))
	}
	if userBadges[0].Badge == nil || userBadges[0].Badge.Name != "Mentor" {
		t.Errorf("Expected newest badge first with preloaded Badge, got %+v", userBadges[0])
	}
}

func TestBadgeRepository_GetUserBadge(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	profile := createTestProfile(t, db, "alice")
	badge := createTestBadge(t, repo, "Speaker")
	_ = repo.AwardBadge(ctx, profile.UserID, badge.ID, time.Now())

	ub, err := repo.GetUserBadge(ctx, profile.UserID, badge.ID)
	if err != nil {
		t.Fatalf("GetUserBadge() failed: %v", err)
	}
	if ub.Profile == nil || ub.Profile.Name != "alice" {
		t.Errorf("Expected preloaded profile 'alice', got %+v", ub.Profile)
	}

	_, err = repo.GetUserBadge(ctx, profile.UserID, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestBadgeRepository_GetHolders(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	alice := createTestProfile(t, db, "alice")
	bob := createTestProfile(t, db, "bob")
	badge := createTestBadge(t, repo, "Speaker")

	_ = repo.AwardBadge(ctx, alice.UserID, badge.ID, time.Now().Add(-time.Hour))
	_ = repo.AwardBadge(ctx, bob.UserID, badge.ID, time.Now())

	holders, err := repo.GetHolders(ctx, badge.ID)
	if err != nil {
		t.Fatalf("GetHolders() failed: %v", err)
	}
	if len(holders) != 2 {
		t.Fatalf("Expected 2 holders, got %d", len(holders))
	}
	if holders[0].Profile == nil || holders[0].Profile.Name != "bob" {
		t.Errorf("Expected most recent holder 'bob' first, got %+v", holders[0].Profile)
	}
}
