package repository

import (
	"context"
	"fmt"

	"github.com/acesastra/ace-portal/internal/models"
)

// NewProfile carries the derived fields passed to create_new_user_profile.
type NewProfile struct {
	UserID             string
	Name               string
	RegistrationNumber string
	Year               int
	Department         string
}

// ProfileRepository handles member profile operations.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUserID retrieves the profile owned by an account.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFound(err, "failed to get profile for user %s", userID)
	}
	return &profile, nil
}

// ExistsForUser reports whether the account already has a profile.
func (r *ProfileRepository) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check profile for user %s: %w", userID, err)
	}
	return count > 0, nil
}

// CreateViaProcedure inserts a profile through the create_new_user_profile
// stored procedure. Databases without stored procedures (SQLite) get a
// direct insert with the same column values.
func (r *ProfileRepository) CreateViaProcedure(ctx context.Context, p NewProfile) error {
	if r.db.IsPostgres() {
		err := r.db.WithContext(ctx).Exec(
			"SELECT create_new_user_profile(?, ?, ?, ?, ?)",
			p.UserID, p.Name, p.RegistrationNumber, p.Year, p.Department,
		).Error
		if err != nil {
			return fmt.Errorf("create_new_user_profile failed for user %s: %w", p.UserID, err)
		}
		return nil
	}

	profile := &models.UserProfile{
		ID:                 p.UserID,
		UserID:             p.UserID,
		Name:               p.Name,
		RegistrationNumber: p.RegistrationNumber,
		Year:               p.Year,
		Department:         p.Department,
	}
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to insert profile for user %s: %w", p.UserID, err)
	}
	return nil
}

// UpdateContactNumber sets or clears (nil) the contact number of a profile.
func (r *ProfileRepository) UpdateContactNumber(ctx context.Context, userID string, contact *string) error {
	result := r.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Update("contact_number", contact)
	if result.Error != nil {
		return fmt.Errorf("failed to update contact number for user %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
