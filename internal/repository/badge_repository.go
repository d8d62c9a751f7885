package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/acesastra/ace-portal/internal/models"
)

// BadgeRepository handles badge-related database operations.
type BadgeRepository struct {
	db *DB
}

// NewBadgeRepository creates a new badge repository.
func NewBadgeRepository(db *DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// Create creates a new badge in the database.
func (r *BadgeRepository) Create(ctx context.Context, badge *models.Badge) error {
	return r.db.WithContext(ctx).Create(badge).Error
}

// GetByID retrieves a badge by its ID.
func (r *BadgeRepository) GetByID(ctx context.Context, id string) (*models.Badge, error) {
	var badge models.Badge
	if err := r.db.WithContext(ctx).First(&badge, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "failed to get badge %s", id)
	}
	return &badge, nil
}

// GetByName retrieves a badge by its name.
func (r *BadgeRepository) GetByName(ctx context.Context, name string) (*models.Badge, error) {
	var badge models.Badge
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&badge).Error; err != nil {
		return nil, notFound(err, "failed to get badge %q", name)
	}
	return &badge, nil
}

// GetAll retrieves the badge catalog ordered by name.
func (r *BadgeRepository) GetAll(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	err := r.db.WithContext(ctx).Order("name ASC").Find(&badges).Error
	return badges, err
}

// UpsertByName creates the badge or updates the one with the same name.
func (r *BadgeRepository) UpsertByName(ctx context.Context, badge *models.Badge) error {
	existing, err := r.GetByName(ctx, badge.Name)
	if errors.Is(err, ErrNotFound) {
		return r.Create(ctx, badge)
	}
	if err != nil {
		return err
	}
	badge.ID = existing.ID
	return r.db.WithContext(ctx).Save(badge).Error
}

// AwardBadge records that a member earned a badge. Awarding an already
// earned badge is a no-op.
func (r *BadgeRepository) AwardBadge(ctx context.Context, userID, badgeID string, earnedAt time.Time) error {
	exists, err := r.HasUserEarnedBadge(ctx, userID, badgeID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	userBadge := &models.UserBadge{
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: earnedAt,
	}
	return r.db.WithContext(ctx).Create(userBadge).Error
}

// HasUserEarnedBadge checks if a member has earned a specific badge.
func (r *BadgeRepository) HasUserEarnedBadge(ctx context.Context, userID, badgeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserBadges retrieves all badges earned by a member, newest first.
func (r *BadgeRepository) GetUserBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	var userBadges []models.UserBadge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Badge").
		Order("earned_at DESC").
		Find(&userBadges).Error
	return userBadges, err
}

// GetUserBadge retrieves one earned badge with badge and profile preloaded.
func (r *BadgeRepository) GetUserBadge(ctx context.Context, userID, badgeID string) (*models.UserBadge, error) {
	var userBadge models.UserBadge
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Preload("Badge").
		Preload("Profile").
		First(&userBadge).Error
	if err != nil {
		return nil, notFound(err, "failed to get badge %s of user %s", badgeID, userID)
	}
	return &userBadge, nil
}

// GetHolders retrieves the earned records of a badge with holder profiles.
func (r *BadgeRepository) GetHolders(ctx context.Context, badgeID string) ([]models.UserBadge, error) {
	var holders []models.UserBadge
	err := r.db.WithContext(ctx).
		Where("badge_id = ?", badgeID).
		Preload("Profile").
		Order("earned_at DESC").
		Find(&holders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get holders of badge %s: %w", badgeID, err)
	}
	return holders, nil
}

// GetBadgeHoldersCount returns the number of members who have earned a badge.
func (r *BadgeRepository) GetBadgeHoldersCount(ctx context.Context, badgeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserBadge{}).
		Where("badge_id = ?", badgeID).
		Count(&count).Error
	return count, err
}

// Delete deletes a badge by its ID.
func (r *BadgeRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Delete(&models.Badge{}, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
