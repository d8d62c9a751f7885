package models

import (
	"time"

	"gorm.io/gorm"
)

// BadgeType describes how a badge is granted.
type BadgeType string

// BadgeType values.
const (
	BadgeTypeManual    BadgeType = "MANUAL"
	BadgeTypeAutomatic BadgeType = "AUTOMATIC"
)

// Badge is a catalog entry that members can earn.
type Badge struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	IconKey     string    `gorm:"column:icon_url;size:255;not null" json:"icon_key"` // object key inside the badges bucket
	Type        BadgeType `gorm:"size:20;not null;default:MANUAL" json:"type"`
}

// TableName specifies the table name for Badge model.
func (Badge) TableName() string {
	return "badges"
}

// BeforeCreate assigns a UUID when none is set.
func (b *Badge) BeforeCreate(_ *gorm.DB) error {
	b.ID = ensureID(b.ID)
	return nil
}

// UserBadge represents a badge earned by a member.
type UserBadge struct {
	ID       string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID   string       `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Profile  *UserProfile `gorm:"foreignKey:UserID;references:UserID" json:"profile,omitempty"`
	BadgeID  string       `gorm:"type:varchar(36);not null;index" json:"badge_id"`
	Badge    *Badge       `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	EarnedAt time.Time    `gorm:"not null" json:"earned_at"`
}

// TableName specifies the table name for UserBadge model.
func (UserBadge) TableName() string {
	return "user_badges"
}

// BeforeCreate assigns a UUID and earned timestamp when missing.
func (ub *UserBadge) BeforeCreate(_ *gorm.DB) error {
	ub.ID = ensureID(ub.ID)
	if ub.EarnedAt.IsZero() {
		ub.EarnedAt = time.Now().UTC()
	}
	return nil
}
