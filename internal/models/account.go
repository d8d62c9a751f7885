// Package models defines the persisted entities of the club portal.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is the identity record created on first OAuth login.
// It is owned by the auth layer; the application only reads it, and the
// provisioning flow deletes it when the email domain is not allowed.
type Account struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Provider  string    `gorm:"size:32;not null;uniqueIndex:idx_accounts_provider_subject" json:"provider"`
	Subject   string    `gorm:"size:255;not null;uniqueIndex:idx_accounts_provider_subject" json:"-"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Account model.
func (Account) TableName() string {
	return "accounts"
}

// BeforeCreate assigns a UUID when none is set.
func (a *Account) BeforeCreate(_ *gorm.DB) error {
	a.ID = ensureID(a.ID)
	return nil
}

func ensureID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
