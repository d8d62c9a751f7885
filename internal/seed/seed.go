// Package seed loads a YAML catalog of badges, events and badge awards and
// upserts it by name.
package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/internal/repository"
	"github.com/acesastra/ace-portal/pkg/logger"
)

// Catalog is the seed file layout.
type Catalog struct {
	Badges []Badge `yaml:"badges"`
	Events []Event `yaml:"events"`
	Awards []Award `yaml:"awards"`
}

// Badge is a badge definition.
type Badge struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Type        string `yaml:"type"`
}

// Event is an event definition.
type Event struct {
	Name          string    `yaml:"name"`
	Description   string    `yaml:"description"`
	Location      string    `yaml:"location"`
	StartTime     time.Time `yaml:"start_time"`
	Status        string    `yaml:"status"`
	Type          string    `yaml:"type"`
	Image         string    `yaml:"image"`
	OrganizerInfo string    `yaml:"organizer_info"`
}

// Award grants a badge, by name, to an existing member.
type Award struct {
	UserID   string    `yaml:"user_id"`
	Badge    string    `yaml:"badge"`
	EarnedAt time.Time `yaml:"earned_at"`
}

// Summary counts what Apply wrote.
type Summary struct {
	Badges        int
	Events        int
	Awards        int
	SkippedAwards int
}

var (
	badgeTypes = map[models.BadgeType]bool{
		models.BadgeTypeManual:    true,
		models.BadgeTypeAutomatic: true,
	}
	eventStatuses = map[models.EventStatus]bool{
		models.EventStatusOpen:      true,
		models.EventStatusClosed:    true,
		models.EventStatusDone:      true,
		models.EventStatusCancelled: true,
	}
	eventTypes = map[models.EventType]bool{
		models.EventTypeContest:  true,
		models.EventTypeWorkshop: true,
		models.EventTypeTalk:     true,
	}
)

// LoadFile reads and validates a seed file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a seed document.
func Parse(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Validate checks required fields and enum values, defaulting badge type to
// MANUAL and event status to OPEN.
func (c *Catalog) Validate() error {
	badgeNames := make(map[string]bool, len(c.Badges))
	for i := range c.Badges {
		b := &c.Badges[i]
		if b.Name == "" {
			return fmt.Errorf("badges[%d]: name is required", i)
		}
		if b.Type == "" {
			b.Type = string(models.BadgeTypeManual)
		}
		if !badgeTypes[models.BadgeType(b.Type)] {
			return fmt.Errorf("badge %q: unknown type %q", b.Name, b.Type)
		}
		badgeNames[b.Name] = true
	}

	for i := range c.Events {
		e := &c.Events[i]
		if e.Name == "" {
			return fmt.Errorf("events[%d]: name is required", i)
		}
		if e.StartTime.IsZero() {
			return fmt.Errorf("event %q: start_time is required", e.Name)
		}
		if e.Status == "" {
			e.Status = string(models.EventStatusOpen)
		}
		if !eventStatuses[models.EventStatus(e.Status)] {
			return fmt.Errorf("event %q: unknown status %q", e.Name, e.Status)
		}
		if !eventTypes[models.EventType(e.Type)] {
			return fmt.Errorf("event %q: unknown type %q", e.Name, e.Type)
		}
	}

	for i, a := range c.Awards {
		if a.UserID == "" || a.Badge == "" {
			return fmt.Errorf("awards[%d]: user_id and badge are required", i)
		}
		if !badgeNames[a.Badge] {
			return fmt.Errorf("awards[%d]: badge %q is not defined in this file", i, a.Badge)
		}
	}
	return nil
}

// Seeder writes a catalog through the repositories.
type Seeder struct {
	badgeRepo   *repository.BadgeRepository
	eventRepo   *repository.EventRepository
	profileRepo *repository.ProfileRepository
	log         *logger.Logger
}

// NewSeeder creates a new seeder.
func NewSeeder(db *repository.DB, log *logger.Logger) *Seeder {
	return &Seeder{
		badgeRepo:   repository.NewBadgeRepository(db),
		eventRepo:   repository.NewEventRepository(db),
		profileRepo: repository.NewProfileRepository(db),
		log:         log,
	}
}

// Apply upserts badges and events by name and awards badges. Awards for
// members without a profile are skipped.
func (s *Seeder) Apply(ctx context.Context, catalog *Catalog) (Summary, error) {
	var summary Summary
	badgeIDs := make(map[string]string, len(catalog.Badges))

	for _, b := range catalog.Badges {
		badge := &models.Badge{
			Name:        b.Name,
			Description: b.Description,
			IconKey:     b.Icon,
			Type:        models.BadgeType(b.Type),
		}
		if err := s.badgeRepo.UpsertByName(ctx, badge); err != nil {
			return summary, fmt.Errorf("failed to seed badge %q: %w", b.Name, err)
		}
		badgeIDs[b.Name] = badge.ID
		summary.Badges++
	}

	for _, e := range catalog.Events {
		event := &models.Event{
			Name:        e.Name,
			Description: e.Description,
			Location:    e.Location,
			StartTime:   e.StartTime,
			Status:      models.EventStatus(e.Status),
			Type:        models.EventType(e.Type),
		}
		if e.Image != "" {
			event.ImageKey = &e.Image
		}
		if e.OrganizerInfo != "" {
			event.OrganizerInfo = &e.OrganizerInfo
		}
		if err := s.eventRepo.UpsertByName(ctx, event); err != nil {
			return summary, fmt.Errorf("failed to seed event %q: %w", e.Name, err)
		}
		summary.Events++
	}

	for _, a := range catalog.Awards {
		exists, err := s.profileRepo.ExistsForUser(ctx, a.UserID)
		if err != nil {
			return summary, err
		}
		if !exists {
			s.log.Warn().Str("user_id", a.UserID).Str("badge", a.Badge).Msg("Skipping award for unknown member")
			summary.SkippedAwards++
			continue
		}

		earnedAt := a.EarnedAt
		if earnedAt.IsZero() {
			earnedAt = time.Now().UTC()
		}
		if err := s.badgeRepo.AwardBadge(ctx, a.UserID, badgeIDs[a.Badge], earnedAt); err != nil {
			return summary, fmt.Errorf("failed to award %q to %s: %w", a.Badge, a.UserID, err)
		}
		summary.Awards++
	}

	s.log.Info().
		Int("badges", summary.Badges).
		Int("events", summary.Events).
		Int("awards", summary.Awards).
		Int("skipped_awards", summary.SkippedAwards).
		Msg("Seed data applied")

	return summary, nil
}
