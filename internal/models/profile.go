package models

import (
	"errors"
	"regexp"

	"gorm.io/gorm"
)

var contactNumberPattern = regexp.MustCompile(`^\d{10}$`)

// ErrInvalidContactNumber is returned when a contact number is not exactly 10 digits.
var ErrInvalidContactNumber = errors.New("contact number must be exactly 10 digits")

// ValidContactNumber reports whether s is exactly ten ASCII digits.
func ValidContactNumber(s string) bool {
	return contactNumberPattern.MatchString(s)
}

// UserProfile holds the club-specific fields derived from an Account.
// Existence of a profile implies the account passed domain validation.
type UserProfile struct {
	ID                 string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID             string  `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Name               string  `gorm:"size:255;not null" json:"name"`
	RegistrationNumber string  `gorm:"size:64;not null" json:"registration_number"`
	Department         string  `gorm:"size:255;not null" json:"department"`
	Year               int     `gorm:"not null" json:"year"`
	ContactNumber      *string `gorm:"size:20" json:"contact_number"`
	CurrentRating      int     `gorm:"not null;default:0" json:"current_rating"`
}

// TableName specifies the table name for UserProfile model.
func (UserProfile) TableName() string {
	return "user_profiles"
}

// BeforeCreate defaults the profile ID to the owning account ID so that
// profile and account share an identifier, as page URLs rely on.
func (p *UserProfile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = ensureID(p.UserID)
	}
	return nil
}

// HasContactNumber reports whether a non-empty contact number is stored.
func (p *UserProfile) HasContactNumber() bool {
	return p.ContactNumber != nil && *p.ContactNumber != ""
}
