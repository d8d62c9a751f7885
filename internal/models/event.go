package models

import (
	"time"

	"gorm.io/gorm"
)

// EventStatus is the lifecycle state of an event: OPEN -> CLOSED -> DONE, or CANCELLED.
type EventStatus string

// EventStatus values.
const (
	EventStatusOpen      EventStatus = "OPEN"
	EventStatusClosed    EventStatus = "CLOSED"
	EventStatusDone      EventStatus = "DONE"
	EventStatusCancelled EventStatus = "CANCELLED"
)

// EventType tags the kind of event.
type EventType string

// EventType values.
const (
	EventTypeContest  EventType = "CONTEST"
	EventTypeWorkshop EventType = "WORKSHOP"
	EventTypeTalk     EventType = "TALK"
)

// Event is a club event.
type Event struct {
	ID            string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name          string      `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description   string      `gorm:"type:text;not null" json:"description"`
	Location      string      `gorm:"size:255;not null" json:"location"`
	StartTime     time.Time   `gorm:"not null;index" json:"start_time"`
	OrganizerInfo *string     `gorm:"type:text" json:"organizer_info"`
	Status        EventStatus `gorm:"size:20;not null;default:OPEN;index" json:"status"`
	ImageKey      *string     `gorm:"column:img_url;size:255" json:"image_key"`
	Type          EventType   `gorm:"size:20;not null" json:"type"`
}

// TableName specifies the table name for Event model.
func (Event) TableName() string {
	return "events"
}

// BeforeCreate assigns a UUID when none is set.
func (e *Event) BeforeCreate(_ *gorm.DB) error {
	e.ID = ensureID(e.ID)
	return nil
}

// AcceptsRegistrations reports whether members may still register.
func (e *Event) AcceptsRegistrations() bool {
	return e.Status == EventStatusOpen
}

// IsCompleted reports whether the event is over and points are final.
func (e *Event) IsCompleted() bool {
	return e.Status == EventStatusDone
}

// Registration links a member to an event.
// Uniqueness per (user, event) is checked by the application, not the schema.
type Registration struct {
	ID           string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EventID      string       `gorm:"type:varchar(36);not null;index" json:"event_id"`
	Event        *Event       `gorm:"foreignKey:EventID" json:"event,omitempty"`
	UserID       string       `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Profile      *UserProfile `gorm:"foreignKey:UserID;references:UserID" json:"profile,omitempty"`
	Points       *int         `json:"points"`
	Attended     *bool        `json:"attended"`
	RegisteredAt time.Time    `gorm:"not null" json:"registered_at"`
}

// TableName specifies the table name for Registration model.
func (Registration) TableName() string {
	return "registrations"
}

// BeforeCreate assigns a UUID and registration timestamp when missing.
func (r *Registration) BeforeCreate(_ *gorm.DB) error {
	r.ID = ensureID(r.ID)
	if r.RegisteredAt.IsZero() {
		r.RegisteredAt = time.Now().UTC()
	}
	return nil
}
