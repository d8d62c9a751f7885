package models

import (
	"time"

	"gorm.io/gorm"
)

// ContactMessage is a write-only mailbox entry from the public contact form.
type ContactMessage struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"size:511;not null" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for ContactMessage model.
func (ContactMessage) TableName() string {
	return "contact_messages"
}

// BeforeCreate assigns a UUID when none is set.
func (m *ContactMessage) BeforeCreate(_ *gorm.DB) error {
	m.ID = ensureID(m.ID)
	return nil
}
