package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/acesastra/ace-portal/internal/models"
)

// EventRepository handles event and registration queries.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// GetByID retrieves an event by ID.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "failed to get event %s", id)
	}
	return &event, nil
}

// ListByStatus retrieves events with the given status ordered by start time.
func (r *EventRepository) ListByStatus(ctx context.Context, status models.EventStatus, ascending bool) ([]models.Event, error) {
	order := "start_time DESC"
	if ascending {
		order = "start_time ASC"
	}

	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order(order).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s events: %w", status, err)
	}
	return events, nil
}

// UpsertByName creates the event or updates the one with the same name.
func (r *EventRepository) UpsertByName(ctx context.Context, event *models.Event) error {
	var existing models.Event
	err := r.db.WithContext(ctx).Where("name = ?", event.Name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(event).Error
	}
	if err != nil {
		return fmt.Errorf("failed to look up event %q: %w", event.Name, err)
	}
	event.ID = existing.ID
	return r.db.WithContext(ctx).Save(event).Error
}

// CreateRegistration inserts a registration row.
func (r *EventRepository) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	if err := r.db.WithContext(ctx).Create(reg).Error; err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

// IsRegistered reports whether the member has a registration for the event.
func (r *EventRepository) IsRegistered(ctx context.Context, userID, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Registration{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	return count > 0, nil
}

// ListParticipants retrieves an event's registrations with profiles,
// highest points first and unscored registrations last.
func (r *EventRepository) ListParticipants(ctx context.Context, eventID string) ([]models.Registration, error) {
	var regs []models.Registration
	err := r.db.WithContext(ctx).
		InnerJoins("Profile").
		Where("registrations.event_id = ?", eventID).
		Order("registrations.points IS NULL, registrations.points DESC, registrations.registered_at ASC").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of event %s: %w", eventID, err)
	}
	return regs, nil
}

// ListUserRegistrations retrieves a member's registrations whose event has
// one of the given statuses, ordered by event start time.
func (r *EventRepository) ListUserRegistrations(
	ctx context.Context,
	userID string,
	statuses []models.EventStatus,
	ascending bool,
) ([]models.Registration, error) {
	order := `"Event"."start_time" DESC`
	if ascending {
		order = `"Event"."start_time" ASC`
	}

	var regs []models.Registration
	err := r.db.WithContext(ctx).
		InnerJoins("Event").
		Where("registrations.user_id = ?", userID).
		Where(`"Event"."status" IN ?`, statuses).
		Order(order).
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations of user %s: %w", userID, err)
	}
	return regs, nil
}

// MemberPoints is a member's score summed over completed events.
type MemberPoints struct {
	UserID       string
	Name         string
	Department   string
	TotalPoints  int
	EventsScored int
}

// TotalPointsByMember sums scored registrations of DONE events per member,
// highest total first. A limit of 0 returns every member.
func (r *EventRepository) TotalPointsByMember(ctx context.Context, limit int) ([]MemberPoints, error) {
	query := r.db.WithContext(ctx).
		Table("registrations").
		Select(`registrations.user_id AS user_id,
			user_profiles.name AS name,
			user_profiles.department AS department,
			SUM(registrations.points) AS total_points,
			COUNT(registrations.id) AS events_scored`).
		Joins("JOIN events ON events.id = registrations.event_id").
		Joins("JOIN user_profiles ON user_profiles.user_id = registrations.user_id").
		Where("events.status = ? AND registrations.points IS NOT NULL", models.EventStatusDone).
		Group("registrations.user_id, user_profiles.name, user_profiles.department").
		Order("total_points DESC, name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []MemberPoints
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate member points: %w", err)
	}
	return rows, nil
}
